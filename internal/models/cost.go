package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a report carries no unit.
const DefaultCurrency = "USD"

// CredentialSource identifies where credentials were resolved from.
type CredentialSource int

const (
	// SourceEnvironment means credentials came from AWS_* environment variables.
	SourceEnvironment CredentialSource = iota
	// SourceCredentialsFile means credentials came from the shared credentials file.
	SourceCredentialsFile
	// SourceConfigFile means credentials came from the shared config file.
	SourceConfigFile
)

// String returns the display name of the source.
func (s CredentialSource) String() string {
	switch s {
	case SourceEnvironment:
		return "environment"
	case SourceCredentialsFile:
		return "credentials file"
	case SourceConfigFile:
		return "config file"
	default:
		return "unknown"
	}
}

// Credentials holds the key material used to sign requests.
// SessionToken is empty for long-term keys.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	Profile         string
	Source          CredentialSource
}

// HasSessionToken reports whether the credentials are temporary.
func (c Credentials) HasSessionToken() bool {
	return c.SessionToken != ""
}

// MaskedKeyID returns the access key id with all but the last four characters hidden.
func (c Credentials) MaskedKeyID() string {
	if len(c.AccessKeyID) <= 4 {
		return strings.Repeat("*", len(c.AccessKeyID))
	}
	return strings.Repeat("*", len(c.AccessKeyID)-4) + c.AccessKeyID[len(c.AccessKeyID)-4:]
}

// ServiceCost is the spend attributed to one service within a period.
type ServiceCost struct {
	Name   string
	Amount decimal.Decimal
	Unit   string
}

// CostReport is the per-service spend for a single period.
type CostReport struct {
	Period   DateRange
	Services []ServiceCost
	Total    decimal.Decimal
	Currency string
}

// NewEmptyReport returns a report for period with no services and a zero total.
func NewEmptyReport(period DateRange) *CostReport {
	return &CostReport{
		Period:   period,
		Services: []ServiceCost{},
		Total:    decimal.Zero,
		Currency: DefaultCurrency,
	}
}

// IsEmpty reports whether the report has no services.
func (r *CostReport) IsEmpty() bool {
	return r == nil || len(r.Services) == 0
}

// ServiceCount returns the number of services in the report.
func (r *CostReport) ServiceCount() int {
	if r == nil {
		return 0
	}
	return len(r.Services)
}

// Package costexplorer queries the AWS Cost Explorer GetCostAndUsage API
// with hand-signed requests.
package costexplorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/aws-costs-tui/internal/logger"
	"github.com/j-veylop/aws-costs-tui/internal/models"
	"github.com/j-veylop/aws-costs-tui/internal/services/sigv4"
)

const (
	// DefaultRegion is used when the credentials carry no region.
	DefaultRegion = "us-east-1"

	// ServiceName is the signing name of Cost Explorer.
	ServiceName = "ce"

	targetGetCostAndUsage = "AWSInsightsIndexService.GetCostAndUsage"
	contentTypeJSON11     = "application/x-amz-json-1.1"

	defaultTimeout = 30 * time.Second
	maxPages       = 20
	maxErrorBody   = 4096
)

// ZeroPolicy controls whether services with a zero amount stay in a report.
type ZeroPolicy int

const (
	// KeepZero retains zero-amount services.
	KeepZero ZeroPolicy = iota
	// DropZero removes zero-amount services.
	DropZero
)

// Fetcher fetches one cost report.
type Fetcher interface {
	FetchReport(ctx context.Context, period models.DateRange, groupBy string) (*models.CostReport, error)
}

// Client is a Cost Explorer client bound to one set of credentials.
type Client struct {
	creds      models.Credentials
	region     string
	endpoint   *url.URL
	httpClient *http.Client
	zeroPolicy ZeroPolicy
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEndpoint overrides the regional endpoint URL.
func WithEndpoint(endpoint *url.URL) Option {
	return func(c *Client) {
		if endpoint != nil {
			c.endpoint = endpoint
		}
	}
}

// WithZeroPolicy sets the zero-amount retention policy.
func WithZeroPolicy(p ZeroPolicy) Option {
	return func(c *Client) {
		c.zeroPolicy = p
	}
}

// WithClock sets the time source used for request signing.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTimeout sets the per-request timeout. A client supplied through
// WithHTTPClient is copied first so the caller's client is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// New creates a client. The credentials are copied and never modified.
func New(creds models.Credentials, opts ...Option) *Client {
	region := creds.Region
	if region == "" {
		region = DefaultRegion
	}
	c := &Client{
		creds:      creds,
		region:     region,
		endpoint:   RegionalEndpoint(region),
		httpClient: &http.Client{Timeout: defaultTimeout},
		zeroPolicy: KeepZero,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegionalEndpoint returns https://ce.<region>.amazonaws.com/.
func RegionalEndpoint(region string) *url.URL {
	return &url.URL{Scheme: "https", Host: fmt.Sprintf("ce.%s.amazonaws.com", region), Path: "/"}
}

// Region returns the signing region.
func (c *Client) Region() string {
	return c.region
}

// Endpoint returns the endpoint URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// FetchReport returns the spend for period grouped by the given dimension.
// A period with no billable data yields an empty report, not an error.
func (c *Client) FetchReport(ctx context.Context, period models.DateRange, groupBy string) (*models.CostReport, error) {
	if groupBy == "" {
		groupBy = GroupByService
	}
	req := costAndUsageRequest{
		TimePeriod:  timePeriod{Start: period.StartString(), End: period.EndString()},
		Granularity: granularityMonthly,
		Metrics:     []string{metricUnblended},
		GroupBy:     []groupDefinition{{Type: groupTypeDimension, Key: groupBy}},
	}

	var results []resultByTime
	for page := 0; ; page++ {
		if page == maxPages {
			return nil, &APIError{Kind: ErrDecode, Message: fmt.Sprintf("pagination exceeded %d pages", maxPages)}
		}
		resp, empty, err := c.call(ctx, req)
		if err != nil {
			return nil, err
		}
		if empty {
			if page == 0 {
				logger.Debug("no billable data", "period", period.String())
				return models.NewEmptyReport(period), nil
			}
			// Later pages have nothing more to add.
			break
		}
		results = append(results, resp.ResultsByTime...)
		if resp.NextPageToken == "" {
			break
		}
		req.NextPageToken = resp.NextPageToken
	}

	return buildReport(period, results, c.zeroPolicy)
}

// FetchTrend fetches consecutive monthly reports with this client.
func (c *Client) FetchTrend(ctx context.Context, months []models.DateRange) ([]*models.CostReport, error) {
	return FetchTrend(ctx, c, months)
}

// FetchTrend fetches one report per month through f, oldest first, one
// request at a time. On failure it returns the reports fetched so far along
// with the error. The context is checked before every request.
func FetchTrend(ctx context.Context, f Fetcher, months []models.DateRange) ([]*models.CostReport, error) {
	reports := make([]*models.CostReport, 0, len(months))
	for _, month := range months {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := f.FetchReport(ctx, month, GroupByService)
		if err != nil {
			return reports, fmt.Errorf("fetch %s: %w", month.Label(), err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// call performs one signed round trip. The bool result is true for the
// "data unavailable" response.
func (c *Client) call(ctx context.Context, payload costAndUsageRequest) (*costAndUsageResponse, bool, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, false, &APIError{Kind: ErrBadRequest, Message: err.Error()}
	}

	headers := map[string]string{
		"Content-Type": contentTypeJSON11,
		"X-Amz-Target": targetGetCostAndUsage,
	}
	signed, err := sigv4.Sign(sigv4.Request{
		Method:      http.MethodPost,
		Host:        c.endpoint.Host,
		Path:        c.endpoint.Path,
		Headers:     headers,
		Body:        body,
		Credentials: c.creds,
		Region:      c.region,
		Service:     ServiceName,
		Time:        c.now(),
	})
	if err != nil {
		return nil, false, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, false, &APIError{Kind: ErrBadRequest, Message: err.Error()}
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range signed {
		httpReq.Header.Set(k, v)
	}

	logger.Debug("cost explorer request", "period", payload.TimePeriod.Start+".."+payload.TimePeriod.End,
		"endpoint", c.endpoint.Host)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		return nil, false, &APIError{Kind: ErrTransient, Message: err.Error()}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, &APIError{Kind: ErrTransient, StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		err := c.statusError(resp, respBody)
		if errors.Is(err, errDataUnavailable) {
			return nil, true, nil
		}
		return nil, false, err
	}

	var out costAndUsageResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, false, &APIError{
			Kind:       ErrDecode,
			StatusCode: resp.StatusCode,
			Message:    err.Error(),
			RequestID:  requestID(resp),
		}
	}
	return &out, false, nil
}

func (c *Client) statusError(resp *http.Response, body []byte) error {
	var envelope errorResponse
	_ = json.Unmarshal(body, &envelope)

	errType := envelope.Type
	if errType == "" {
		errType = resp.Header.Get("X-Amzn-ErrorType")
	}

	kind, empty := classifyStatus(resp.StatusCode, errType)
	if empty {
		return errDataUnavailable
	}

	msg := envelope.text()
	if msg == "" && len(body) > 0 && envelope.Type == "" {
		msg = string(truncate(body, maxErrorBody))
	}
	apiErr := &APIError{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Type:       errType,
		Message:    msg,
		RequestID:  requestID(resp),
	}
	logger.Warn("cost explorer request failed", "status", resp.StatusCode, "type", shortType(errType),
		"request_id", apiErr.RequestID)
	return apiErr
}

// errDataUnavailable never leaves the package; call converts it to an
// empty report.
var errDataUnavailable = errors.New("data unavailable")

func requestID(resp *http.Response) string {
	if id := resp.Header.Get("X-Amzn-Requestid"); id != "" {
		return id
	}
	return resp.Header.Get("X-Amz-Request-Id")
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

// buildReport folds the result buckets into one report. Amounts for the same
// service across buckets are summed; order follows first appearance.
func buildReport(period models.DateRange, results []resultByTime, policy ZeroPolicy) (*models.CostReport, error) {
	report := models.NewEmptyReport(period)
	report.Currency = ""

	index := make(map[string]int)
	for _, r := range results {
		for _, g := range r.Groups {
			if len(g.Keys) == 0 {
				continue
			}
			name := g.Keys[0]
			metric, ok := g.Metrics[metricUnblended]
			if !ok {
				continue
			}
			amount, err := decimal.NewFromString(metric.Amount)
			if err != nil {
				return nil, &APIError{
					Kind:    ErrDecode,
					Message: fmt.Sprintf("service %q: invalid amount %q", name, metric.Amount),
				}
			}
			if report.Currency == "" && metric.Unit != "" {
				report.Currency = metric.Unit
			}
			if i, seen := index[name]; seen {
				report.Services[i].Amount = report.Services[i].Amount.Add(amount)
				continue
			}
			index[name] = len(report.Services)
			report.Services = append(report.Services, models.ServiceCost{
				Name:   name,
				Amount: amount,
				Unit:   metric.Unit,
			})
		}
	}

	if policy == DropZero {
		kept := report.Services[:0]
		for _, s := range report.Services {
			if !s.Amount.IsZero() {
				kept = append(kept, s)
			}
		}
		report.Services = kept
	}

	for _, s := range report.Services {
		report.Total = report.Total.Add(s.Amount)
	}
	if report.Currency == "" {
		report.Currency = models.DefaultCurrency
	}
	return report, nil
}

package costexplorer

// Wire types for AWSInsightsIndexService.GetCostAndUsage.

const (
	granularityMonthly = "MONTHLY"
	metricUnblended    = "UnblendedCost"
	groupTypeDimension = "DIMENSION"

	// GroupByService partitions a report by AWS service name.
	GroupByService = "SERVICE"
)

type timePeriod struct {
	Start string `json:"Start"`
	End   string `json:"End"`
}

type groupDefinition struct {
	Type string `json:"Type"`
	Key  string `json:"Key"`
}

type costAndUsageRequest struct {
	TimePeriod    timePeriod        `json:"TimePeriod"`
	Granularity   string            `json:"Granularity"`
	Metrics       []string          `json:"Metrics"`
	GroupBy       []groupDefinition `json:"GroupBy,omitempty"`
	NextPageToken string            `json:"NextPageToken,omitempty"`
}

type metricValue struct {
	Amount string `json:"Amount"`
	Unit   string `json:"Unit"`
}

type group struct {
	Keys    []string               `json:"Keys"`
	Metrics map[string]metricValue `json:"Metrics"`
}

type resultByTime struct {
	TimePeriod timePeriod             `json:"TimePeriod"`
	Total      map[string]metricValue `json:"Total"`
	Groups     []group                `json:"Groups"`
	Estimated  bool                   `json:"Estimated"`
}

type costAndUsageResponse struct {
	ResultsByTime []resultByTime `json:"ResultsByTime"`
	NextPageToken string         `json:"NextPageToken"`
}

// errorResponse is the JSON 1.1 error envelope. Some services spell the
// message field in lower case, some capitalised.
type errorResponse struct {
	Type         string `json:"__type"`
	Message      string `json:"message"`
	MessageUpper string `json:"Message"`
}

func (e errorResponse) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.MessageUpper
}

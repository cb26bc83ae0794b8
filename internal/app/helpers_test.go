package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/aws-costs-tui/internal/config"
	"github.com/j-veylop/aws-costs-tui/internal/models"
	"github.com/j-veylop/aws-costs-tui/internal/services"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// stubFetcher answers every period with the same two services.
type stubFetcher struct{}

func (stubFetcher) FetchReport(ctx context.Context, period models.DateRange, _ string) (*models.CostReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := models.NewEmptyReport(period)
	r.Services = []models.ServiceCost{
		{Name: "Amazon Elastic Compute Cloud - Compute", Amount: decimal.NewFromFloat(52.75), Unit: "USD"},
		{Name: "Amazon Simple Storage Service", Amount: decimal.NewFromFloat(15.80), Unit: "USD"},
	}
	r.Total = decimal.NewFromFloat(68.55)
	return r, nil
}

func newTestManager(t *testing.T, opts ...services.Option) *services.Manager {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Profile:         "default",
		TrendMonths:     6,
		RequestTimeout:  time.Second,
		CredentialsFile: filepath.Join(dir, "credentials"),
		ConfigFile:      filepath.Join(dir, "config"),
	}
	creds := models.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret", Region: "us-east-1", Profile: "default"}

	opts = append([]services.Option{
		services.WithClock(func() time.Time { return testNow }),
		services.WithRetryPolicy(services.RetryPolicy{Attempts: 1}),
	}, opts...)

	mgr, err := services.NewManager(cfg, creds, opts...)
	if err != nil {
		t.Fatalf("NewManager() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := mgr.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})
	return mgr
}

// testSnapshot builds a small snapshot without going through a manager.
func testSnapshot(n int) *models.Snapshot {
	summary := &models.PeriodSummary{
		Period:   models.MonthToDate(testNow),
		Currency: "USD",
		Total:    decimal.NewFromInt(int64(n * 10)),
	}
	for i := range n {
		summary.Services = append(summary.Services, models.RankedService{
			Rank:   i + 1,
			Name:   "Service " + string(rune('A'+i)),
			Amount: decimal.NewFromInt(10),
		})
	}
	return &models.Snapshot{Current: summary, FetchedAt: testNow}
}

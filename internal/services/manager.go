// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/aws-costs-tui/internal/config"
	"github.com/j-veylop/aws-costs-tui/internal/logger"
	"github.com/j-veylop/aws-costs-tui/internal/models"
	"github.com/j-veylop/aws-costs-tui/internal/services/aggregate"
	"github.com/j-veylop/aws-costs-tui/internal/services/costexplorer"
	"github.com/j-veylop/aws-costs-tui/internal/services/credwatch"
)

// ErrRefreshInProgress is returned when Refresh is called while another
// refresh is running.
var ErrRefreshInProgress = errors.New("refresh already in progress")

type (
	// FetchProgressEvent is emitted before each cost request of a refresh.
	FetchProgressEvent struct {
		Step  int
		Total int
		Label string
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}

	// CredentialsChangedEvent is emitted when a shared credential file
	// changes on disk. Credentials in use are not reloaded.
	CredentialsChangedEvent struct {
		Path string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (FetchProgressEvent) isServiceEvent()      {}
func (ErrorEvent) isServiceEvent()              {}
func (CredentialsChangedEvent) isServiceEvent() {}

// Manager orchestrates cost fetching and event routing.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	creds       models.Credentials
	client      *costexplorer.Client
	base        costexplorer.Fetcher
	retry       RetryPolicy
	fetcher     costexplorer.Fetcher
	watcher     *credwatch.Watcher
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	now         func() time.Time
	refreshing  atomic.Bool
	closeOnce   sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

// WithFetcher replaces the Cost Explorer client used for requests. Retries
// still apply.
func WithFetcher(f costexplorer.Fetcher) Option {
	return func(m *Manager) {
		if f != nil {
			m.base = f
		}
	}
}

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(m *Manager) {
		m.retry = p
	}
}

// WithClock sets the time source that decides which months are fetched.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a manager for one set of resolved credentials.
func NewManager(cfg *config.Config, creds models.Credentials, opts ...Option) (*Manager, error) {
	endpoint, err := cfg.EndpointURL()
	if err != nil {
		return nil, err
	}

	zero := costexplorer.KeepZero
	if cfg.DropZero {
		zero = costexplorer.DropZero
	}

	m := &Manager{
		cfg:       cfg,
		creds:     creds,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
		now:       time.Now,
	}
	m.client = costexplorer.New(creds,
		costexplorer.WithEndpoint(endpoint),
		costexplorer.WithTimeout(cfg.RequestTimeout),
		costexplorer.WithZeroPolicy(zero),
	)
	m.base = m.client
	m.retry = DefaultRetryPolicy

	for _, opt := range opts {
		opt(m)
	}
	m.fetcher = retryingFetcher{next: m.base, policy: m.retry}

	logger.Debug("manager ready", "profile", creds.Profile, "region", m.client.Region(),
		"source", creds.Source.String(), "key", creds.MaskedKeyID())
	return m, nil
}

// Refresh fetches the current month, the previous month and the trend
// months, in that order, and builds a snapshot. Only a failure on the current
// month is fatal; other failures are reported as warnings. A cancelled ctx
// discards everything fetched so far.
func (m *Manager) Refresh(ctx context.Context) (*models.Snapshot, error) {
	if !m.refreshing.CompareAndSwap(false, true) {
		return nil, ErrRefreshInProgress
	}
	defer m.refreshing.Store(false)

	now := m.now()
	months := models.TrailingMonths(now, m.cfg.TrendMonths)
	total := 2 + len(months)
	step := 0

	fetcher := progressFetcher{
		next: m.fetcher,
		before: func(period models.DateRange) {
			step++
			m.broadcast(FetchProgressEvent{Step: step, Total: total, Label: period.Label()})
		},
	}

	current, err := fetcher.FetchReport(ctx, models.MonthToDate(now), costexplorer.GroupByService)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		m.broadcast(ErrorEvent{Service: "cost explorer", Error: err})
		return nil, fmt.Errorf("fetch current month: %w", err)
	}

	snapshot := &models.Snapshot{FetchedAt: now}

	previous, err := fetcher.FetchReport(ctx, models.PreviousMonth(now), costexplorer.GroupByService)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("previous month unavailable", "error", err)
		snapshot.Warnings = append(snapshot.Warnings, fmt.Sprintf("previous month: %v", err))
		previous = nil
	}

	trend, err := costexplorer.FetchTrend(ctx, fetcher, months)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("trend incomplete", "fetched", len(trend), "wanted", len(months), "error", err)
		snapshot.Warnings = append(snapshot.Warnings, fmt.Sprintf("trend: %v", err))
	}

	colors := aggregate.NewColorAssignment()
	agg := aggregate.New(colors)
	snapshot.Current = agg.Summarize(current)
	if previous != nil {
		snapshot.Previous = agg.Summarize(previous)
	}
	if len(trend) > 0 {
		snapshot.Trend = agg.BuildTrend(trend)
	}

	logger.Info("refresh complete", "current_total", snapshot.Current.Total.StringFixed(2),
		"services", snapshot.Current.Len(), "distinct_services", colors.Len(),
		"warnings", len(snapshot.Warnings))
	return snapshot, nil
}

// Credentials returns the credentials the manager signs with.
func (m *Manager) Credentials() models.Credentials {
	return m.creds
}

// Region returns the signing region.
func (m *Manager) Region() string {
	return m.client.Region()
}

// Endpoint returns the Cost Explorer endpoint.
func (m *Manager) Endpoint() string {
	return m.client.Endpoint()
}

// Config returns the configuration the manager was built from.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// WatchCredentials starts watching the shared credential files and routes
// their changes to subscribers.
func (m *Manager) WatchCredentials() error {
	w, err := credwatch.New([]string{m.cfg.CredentialsFile, m.cfg.ConfigFile}, credwatch.DefaultDebounce)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.watcher = w
	m.mu.Unlock()

	go m.routeEvents(w)
	return nil
}

// routeEvents routes watcher events to subscribers.
func (m *Manager) routeEvents(w *credwatch.Watcher) {
	for {
		select {
		case event := <-w.Events():
			switch event.Type {
			case credwatch.EventFileChanged:
				m.broadcast(CredentialsChangedEvent{Path: event.Path})
			case credwatch.EventError:
				m.broadcast(ErrorEvent{Service: "credentials watcher", Error: event.Error})
			}

		case <-m.stopChan:
			return
		}
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close stops the watcher and closes all subscriber channels.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		w := m.watcher
		m.mu.Unlock()

		if w != nil {
			err = w.Close()
		}
	})
	return err
}

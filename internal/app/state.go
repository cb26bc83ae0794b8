// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"strconv"
	"sync"
	"time"

	"github.com/j-veylop/aws-costs-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// Progress is the position of a running refresh.
type Progress struct {
	Step  int
	Total int
	Label string
}

// State is shared between the root model and the tabs.
type State struct {
	mu sync.RWMutex

	Snapshot   *models.Snapshot
	Navigation Navigation
	Err        error

	Loading     bool
	Initial     bool
	Progress    Progress
	LastUpdated time.Time

	Profile string
	Region  string

	notifications   []Notification
	notificationSeq int
}

// NewState returns a state that is waiting for its first snapshot.
func NewState() *State {
	return &State{
		Initial:       true,
		notifications: make([]Notification, 0),
	}
}

// SetSource records which profile and region the costs belong to.
func (s *State) SetSource(profile, region string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Profile = profile
	s.Region = region
}

// GetSource returns the profile and region.
func (s *State) GetSource() (profile, region string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Profile, s.Region
}

// StartLoading marks a refresh as running. It returns false if one already is.
func (s *State) StartLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Loading {
		return false
	}
	s.Loading = true
	s.Progress = Progress{}
	return true
}

// SetProgress records the request a refresh is about to make.
func (s *State) SetProgress(p Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Progress = p
}

// GetProgress returns the last recorded progress.
func (s *State) GetProgress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Progress
}

// IsLoading reports whether a refresh is running.
func (s *State) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading
}

// IsInitialLoading reports whether no refresh has finished yet.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Initial
}

// SetSnapshot stores the result of a successful refresh and clears any
// previous error.
func (s *State) SetSnapshot(snap *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Snapshot = snap
	s.Err = nil
	s.Loading = false
	s.Initial = false
	s.LastUpdated = time.Now()
}

// SetError records a failed refresh. The previous snapshot is kept.
func (s *State) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
	s.Loading = false
	s.Initial = false
}

// GetSnapshot returns the current snapshot, nil before the first refresh.
func (s *State) GetSnapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Snapshot
}

// GetError returns the error of the last refresh.
func (s *State) GetError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Err
}

// GetNavigation returns the cursor state.
func (s *State) GetNavigation() Navigation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Navigation
}

// SetNavigation replaces the cursor state.
func (s *State) SetNavigation(nav Navigation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Navigation = nav
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + strconv.Itoa(s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	// Keep only the last 10 notifications
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// GetLastUpdated returns the time of the last successful refresh.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

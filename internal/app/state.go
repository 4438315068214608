// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/j-veylop/langstats-tui/internal/models"
	"github.com/j-veylop/langstats-tui/internal/services"
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
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Stats   bool
	History bool
}

// State is the data shared between the root model and the tabs.
type State struct {
	LastUpdated time.Time
	Snapshot    *models.Snapshot
	Stats       *services.StatsEvent
	Failure     error
	Profiles    []models.Profile
	Active      *models.Profile

	notifications   []Notification
	Loading         LoadingState
	notificationSeq int
	mu              sync.RWMutex
}

// NewState returns a state that starts in the initial loading phase.
func NewState() *State {
	return &State{
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "stats":
		s.Loading.Stats = loading
	case "history":
		s.Loading.History = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial || s.Loading.Stats || s.Loading.History
}

// IsStatsLoading reports whether the skills panel should show its loading
// placeholders.
func (s *State) IsStatsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial || s.Loading.Stats
}

// SetSnapshot stores freshly available stats and clears any failure.
func (s *State) SetSnapshot(snap models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := snap.Clone()
	s.Snapshot = &c
	s.Failure = nil
	s.Loading.Initial = false
	s.Loading.Stats = false
	s.LastUpdated = time.Now()
}

// GetSnapshot returns a copy of the current snapshot, or nil.
func (s *State) GetSnapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Snapshot == nil {
		return nil
	}
	c := s.Snapshot.Clone()
	return &c
}

// SetFailure records that stats are unavailable. The previous snapshot is
// dropped so the panel falls back to its empty state.
func (s *State) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Failure = err
	s.Snapshot = nil
	s.Loading.Initial = false
	s.Loading.Stats = false
}

// GetFailure returns the last listing failure, if any.
func (s *State) GetFailure() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Failure
}

// SetProfiles replaces the profile list and the active profile.
func (s *State) SetProfiles(profiles []models.Profile, active *models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Profiles = profiles
	s.Active = nil
	if active != nil {
		a := active.Clone()
		s.Active = &a
	}
}

// GetProfiles returns a copy of the profile list.
func (s *State) GetProfiles() []models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Profile, len(s.Profiles))
	copy(out, s.Profiles)
	return out
}

// ActiveLogin returns the login of the active profile, or "".
func (s *State) ActiveLogin() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Active == nil {
		return ""
	}
	return s.Active.Login
}

// activeOf returns the profile marked active, or nil.
func activeOf(profiles []models.Profile) *models.Profile {
	for i := range profiles {
		if profiles[i].IsActive {
			p := profiles[i]
			return &p
		}
	}
	return nil
}

// SetStats updates the statistics.
func (s *State) SetStats(stats services.StatsEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stats = &stats
}

// GetStats returns the current statistics.
func (s *State) GetStats() *services.StatsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := fmt.Sprintf("%s-%d", time.Now().Format("20060102150405"), s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

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

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}

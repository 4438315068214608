package app

import (
	"time"

	"github.com/j-veylop/langstats-tui/internal/models"
	"github.com/j-veylop/langstats-tui/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// StatsLoadedMsg carries the result of a fetch for Login. Error is set when
// the stats are unavailable.
type StatsLoadedMsg struct {
	Error    error
	Snapshot models.Snapshot
	Login    string
}

// ProfilesLoadedMsg carries the current profile list.
type ProfilesLoadedMsg struct {
	Active   *models.Profile
	Profiles []models.Profile
}

// ManagerStatsMsg contains the manager's aggregated statistics.
type ManagerStatsMsg struct {
	Stats services.StatsEvent
}

// HistoryChangedMsg tells the tabs that a snapshot was stored for Login.
type HistoryChangedMsg struct {
	Login string
}

// ProfileActionMsg contains the result of adding, removing or activating
// a profile.
type ProfileActionMsg struct {
	Error  error
	Action string // "add", "remove", "activate"
	Login  string
}

// RefreshMsg requests a refetch of the active login, bypassing the cache.
type RefreshMsg struct{}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/langstats-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	fetchTimeout = 2 * time.Minute
)

// ErrNoProfile is reported when there is no login to fetch stats for.
var ErrNoProfile = errors.New("no GitHub login configured")

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData returns a command that loads all initial data.
func loadInitialData(mgr *services.Manager) tea.Cmd {
	snap, profiles := mgr.InitialState()
	cmds := []tea.Cmd{
		func() tea.Msg {
			return ProfilesLoadedMsg{Profiles: profiles, Active: activeOf(profiles)}
		},
		loadStatsCmd(mgr),
	}
	if snap != nil {
		s := *snap
		cmds = append(cmds, func() tea.Msg {
			return StatsLoadedMsg{Login: s.Login, Snapshot: s}
		})
	} else {
		cmds = append(cmds, fetchStatsCmd(mgr, mgr.ActiveLogin()))
	}
	return tea.Batch(cmds...)
}

// loadProfilesCmd returns a command that reads the profile list.
func loadProfilesCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		svc := mgr.Profiles()
		return ProfilesLoadedMsg{Profiles: svc.GetProfiles(), Active: svc.GetActive()}
	}
}

// loadStatsCmd returns a command that loads the manager statistics.
func loadStatsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return ManagerStatsMsg{Stats: mgr.GetStats()}
	}
}

// fetchStatsCmd returns a command that fetches stats for login, serving
// them from the cache while it is live.
func fetchStatsCmd(mgr *services.Manager, login string) tea.Cmd {
	return func() tea.Msg {
		if login == "" {
			return StatsLoadedMsg{Error: ErrNoProfile}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		snap, err := mgr.FetchLanguageStats(ctx, login)
		return StatsLoadedMsg{Login: login, Snapshot: snap, Error: err}
	}
}

// refreshStatsCmd returns a command that refetches login from the network.
func refreshStatsCmd(mgr *services.Manager, login string) tea.Cmd {
	return func() tea.Msg {
		if login == "" {
			return StatsLoadedMsg{Error: ErrNoProfile}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		snap, err := mgr.Refresh(ctx, login)
		return StatsLoadedMsg{Login: login, Snapshot: snap, Error: err}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// AddProfileCmd returns a command that stores a new profile.
func AddProfileCmd(mgr *services.Manager, login, label, token string) tea.Cmd {
	return func() tea.Msg {
		p, err := mgr.Profiles().Add(login, label, token)
		if err == nil {
			login = p.Login
		}
		return ProfileActionMsg{Action: "add", Login: login, Error: err}
	}
}

// RemoveProfileCmd returns a command that deletes a profile.
func RemoveProfileCmd(mgr *services.Manager, idOrLogin string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Profiles().Remove(idOrLogin)
		return ProfileActionMsg{Action: "remove", Login: idOrLogin, Error: err}
	}
}

// ActivateProfileCmd returns a command that makes a profile active.
func ActivateProfileCmd(mgr *services.Manager, idOrLogin string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Profiles().SetActive(idOrLogin)
		return ProfileActionMsg{Action: "activate", Login: idOrLogin, Error: err}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// NotifyError is the public version for use in tabs.
func NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyInfo is the public version for use in tabs.
func NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// Package profiles stores the GitHub logins the dashboard can switch between
// and reloads them when the file changes on disk.
package profiles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/langstats-tui/internal/logger"
	"github.com/j-veylop/langstats-tui/internal/models"
)

// ErrNotFound is returned when no profile matches an ID or login.
var ErrNotFound = errors.New("profile not found")

// File is the JSON layout of the profiles file.
type File struct {
	Active   string           `json:"active,omitempty"`
	Profiles []models.Profile `json:"profiles"`
	Version  int              `json:"version,omitempty"`
}

// Event represents a profiles service event.
type Event struct {
	Error   error
	Profile *models.Profile
	Type    EventType
}

// EventType defines the type of profiles event.
type EventType int

const (
	EventProfilesLoaded EventType = iota
	EventProfilesChanged
	EventProfileAdded
	EventProfileRemoved
	EventActiveChanged
	EventError
)

// Service manages profiles with file watching and change notifications.
type Service struct {
	watcher       *fsnotify.Watcher
	debounceTimer *time.Timer
	eventChan     chan Event
	stopChan      chan struct{}
	filePath      string
	fallback      string
	active        string
	profiles      []models.Profile
	lastSynced    []byte // file content last written or loaded
	mu            sync.RWMutex
	closeOnce     sync.Once
}

// New loads (or creates) the profiles file and starts watching it. fallback
// is the login used while the file holds no profiles.
func New(filePath, fallback string) (*Service, error) {
	if filePath == "" {
		return nil, errors.New("profiles path is empty")
	}

	s := &Service{
		filePath:  filePath,
		fallback:  strings.TrimSpace(fallback),
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create profiles directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("failed to create profiles file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventProfilesLoaded})
	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// GetProfiles returns a copy of all profiles. The fallback login shows up as
// a single implicit profile when the file is empty.
func (s *Service) GetProfiles() []models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.profiles) == 0 {
		if p := s.fallbackProfile(); p != nil {
			return []models.Profile{*p}
		}
		return nil
	}

	out := make([]models.Profile, len(s.profiles))
	for i := range s.profiles {
		out[i] = s.profiles[i].Clone()
		out[i].IsActive = s.profiles[i].ID == s.active
	}
	return out
}

// GetActive returns the active profile, or nil when there is none.
func (s *Service) GetActive() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(s.active); i >= 0 {
		p := s.profiles[i].Clone()
		p.IsActive = true
		return &p
	}
	if len(s.profiles) > 0 {
		p := s.profiles[0].Clone()
		p.IsActive = true
		return &p
	}
	return s.fallbackProfile()
}

// ActiveLogin returns the login of the active profile, or "".
func (s *Service) ActiveLogin() string {
	if p := s.GetActive(); p != nil {
		return p.Login
	}
	return ""
}

// TokenFor returns the token stored for login, if any.
func (s *Service) TokenFor(login string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if strings.EqualFold(p.Login, login) {
			return p.Token
		}
	}
	return ""
}

// Count returns the number of stored profiles.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// Add stores a new profile. The first profile becomes active.
func (s *Service) Add(login, label, token string) (models.Profile, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return models.Profile{}, errors.New("login is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.profiles {
		if strings.EqualFold(p.Login, login) {
			return models.Profile{}, fmt.Errorf("profile for %s already exists", login)
		}
	}

	now := time.Now()
	p := models.Profile{
		ID:      fmt.Sprintf("prof_%d", now.UnixNano()),
		Login:   login,
		Label:   strings.TrimSpace(label),
		Token:   strings.TrimSpace(token),
		AddedAt: now,
	}

	prevActive := s.active
	s.profiles = append(s.profiles, p)
	if len(s.profiles) == 1 {
		s.active = p.ID
	}

	if err := s.saveLocked(); err != nil {
		s.profiles = s.profiles[:len(s.profiles)-1]
		s.active = prevActive
		return models.Profile{}, fmt.Errorf("failed to save profiles: %w", err)
	}

	s.sendEvent(Event{Type: EventProfileAdded, Profile: &p})
	if s.active != prevActive {
		s.sendEvent(Event{Type: EventActiveChanged, Profile: &p})
	}
	return p, nil
}

// Remove deletes a profile by ID or login.
func (s *Service) Remove(idOrLogin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(idOrLogin)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, idOrLogin)
	}

	removed := s.profiles[idx]
	prevActive := s.active
	s.profiles = append(s.profiles[:idx], s.profiles[idx+1:]...)

	if s.active == removed.ID {
		s.active = ""
		if len(s.profiles) > 0 {
			s.active = s.profiles[0].ID
		}
	}

	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	s.sendEvent(Event{Type: EventProfileRemoved, Profile: &removed})
	if s.active != prevActive {
		s.sendEvent(Event{Type: EventActiveChanged})
	}
	return nil
}

// SetActive makes the profile with the given ID or login active.
func (s *Service) SetActive(idOrLogin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(idOrLogin)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, idOrLogin)
	}
	if s.profiles[idx].ID == s.active {
		return nil
	}
	s.active = s.profiles[idx].ID

	if err := s.saveLocked(); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}

	p := s.profiles[idx].Clone()
	s.sendEvent(Event{Type: EventActiveChanged, Profile: &p})
	return nil
}

// Cycle activates the profile after the current one and returns it.
func (s *Service) Cycle() (*models.Profile, error) {
	s.mu.RLock()
	n := len(s.profiles)
	var next string
	if n > 0 {
		idx := s.indexLocked(s.active)
		next = s.profiles[(idx+1)%n].ID
	}
	s.mu.RUnlock()

	if next == "" {
		return s.GetActive(), nil
	}
	if err := s.SetActive(next); err != nil {
		return nil, err
	}
	return s.GetActive(), nil
}

func (s *Service) indexLocked(idOrLogin string) int {
	if idOrLogin == "" {
		return -1
	}
	for i, p := range s.profiles {
		if p.ID == idOrLogin || strings.EqualFold(p.Login, idOrLogin) {
			return i
		}
	}
	return -1
}

func (s *Service) fallbackProfile() *models.Profile {
	if s.fallback == "" {
		return nil
	}
	return &models.Profile{ID: "env", Login: s.fallback, IsActive: true}
}

func parse(data []byte) ([]models.Profile, string, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, "", nil
	}

	var f File
	if err := json.Unmarshal(data, &f); err == nil {
		return f.Profiles, f.Active, nil
	}

	// A bare array of logins is accepted for hand-written files.
	var logins []string
	if err := json.Unmarshal(data, &logins); err == nil {
		profiles := make([]models.Profile, 0, len(logins))
		for _, l := range logins {
			if l = strings.TrimSpace(l); l != "" {
				profiles = append(profiles, models.Profile{ID: l, Login: l})
			}
		}
		return profiles, "", nil
	}

	return nil, "", errors.New("failed to parse profiles file: invalid format")
}

func (s *Service) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	return s.apply(data)
}

func (s *Service) apply(data []byte) error {
	profiles, active, err := parse(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = profiles
	s.active = active
	s.lastSynced = data
	if s.indexLocked(active) < 0 {
		s.active = ""
		if len(profiles) > 0 {
			s.active = profiles[0].ID
		}
	}
	return nil
}

func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes the file atomically (must hold lock).
func (s *Service) saveLocked() error {
	profiles := s.profiles
	if profiles == nil {
		profiles = []models.Profile{}
	}
	data, err := json.MarshalIndent(File{
		Profiles: profiles,
		Active:   s.active,
		Version:  1,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	s.lastSynced = data
	return nil
}

func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory so renames onto the file are seen.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond
	name := filepath.Base(s.filePath)

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			s.mu.Lock()
			if s.debounceTimer != nil {
				s.debounceTimer.Stop()
			}
			s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
			s.mu.Unlock()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the file after an outside edit. Events caused by
// the service's own saves find the content unchanged and are ignored.
func (s *Service) handleFileChange() {
	prev := s.ActiveLogin()

	data, err := os.ReadFile(s.filePath)
	if err == nil {
		s.mu.RLock()
		unchanged := bytes.Equal(data, s.lastSynced)
		s.mu.RUnlock()
		if unchanged {
			return
		}
		err = s.apply(data)
	}
	if err != nil {
		logger.Warn("failed to reload profiles", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	s.sendEvent(Event{Type: EventProfilesChanged})
	if s.ActiveLogin() != prev {
		s.sendEvent(Event{Type: EventActiveChanged, Profile: s.GetActive()})
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}

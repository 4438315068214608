package profiles

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestService(t *testing.T, fallback string) (*Service, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "profiles.json")
	svc, err := New(path, fallback)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})
	return svc, path
}

func TestNew_CreatesFile(t *testing.T) {
	svc, path := newTestService(t, "")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("profiles file was not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	if svc.Count() != 0 {
		t.Errorf("Count() = %d", svc.Count())
	}
	if svc.GetActive() != nil {
		t.Error("GetActive() should be nil with no profiles and no fallback")
	}
}

func TestNew_EmptyPath(t *testing.T) {
	if _, err := New("", "octocat"); err == nil {
		t.Error("New(\"\") should fail")
	}
}

func TestFallbackProfile(t *testing.T) {
	svc, _ := newTestService(t, " octocat ")

	got := svc.GetProfiles()
	if len(got) != 1 || got[0].Login != "octocat" || !got[0].IsActive {
		t.Fatalf("GetProfiles() = %+v", got)
	}
	if svc.ActiveLogin() != "octocat" {
		t.Errorf("ActiveLogin() = %q", svc.ActiveLogin())
	}
	if svc.Count() != 0 {
		t.Error("fallback profile must not be persisted")
	}

	if _, err := svc.Add("hubot", "", ""); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if svc.ActiveLogin() != "hubot" {
		t.Errorf("stored profile should replace fallback, active = %q", svc.ActiveLogin())
	}
}

func TestAdd(t *testing.T) {
	svc, path := newTestService(t, "")

	p, err := svc.Add("octocat", "Personal", " tok ")
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if p.ID == "" || p.AddedAt.IsZero() || p.Token != "tok" {
		t.Errorf("profile = %+v", p)
	}

	active := svc.GetActive()
	if active == nil || active.ID != p.ID || active.DisplayName() != "Personal" {
		t.Errorf("first profile should be active, got %+v", active)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("saved file is not valid JSON: %v", err)
	}
	if len(f.Profiles) != 1 || f.Active != p.ID || f.Version != 1 {
		t.Errorf("saved file = %+v", f)
	}
}

func TestAdd_Invalid(t *testing.T) {
	svc, _ := newTestService(t, "")
	_, _ = svc.Add("octocat", "", "")

	tests := []struct {
		name  string
		login string
	}{
		{"Empty", "  "},
		{"Duplicate", "octocat"},
		{"DuplicateCase", "OctoCat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Add(tt.login, "", ""); err == nil {
				t.Errorf("Add(%q) should fail", tt.login)
			}
		})
	}
}

func TestSetActiveAndCycle(t *testing.T) {
	svc, _ := newTestService(t, "")
	a, _ := svc.Add("alpha", "", "")
	b, _ := svc.Add("beta", "", "")

	if svc.GetActive().ID != a.ID {
		t.Fatal("first profile should stay active")
	}

	if err := svc.SetActive("beta"); err != nil {
		t.Fatalf("SetActive(login) failed: %v", err)
	}
	if svc.GetActive().ID != b.ID {
		t.Error("SetActive by login did not switch")
	}

	next, err := svc.Cycle()
	if err != nil || next.ID != a.ID {
		t.Errorf("Cycle() = %+v, %v", next, err)
	}

	if err := svc.SetActive("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive(unknown) = %v, want ErrNotFound", err)
	}

	var actives int
	for _, p := range svc.GetProfiles() {
		if p.IsActive {
			actives++
		}
	}
	if actives != 1 {
		t.Errorf("%d profiles marked active, want 1", actives)
	}
}

func TestRemove(t *testing.T) {
	svc, _ := newTestService(t, "")
	a, _ := svc.Add("alpha", "", "")
	b, _ := svc.Add("beta", "", "")

	if err := svc.Remove(a.ID); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if svc.Count() != 1 {
		t.Errorf("Count() = %d", svc.Count())
	}
	if svc.GetActive().ID != b.ID {
		t.Error("active should move to the remaining profile")
	}

	if err := svc.Remove("alpha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove(missing) = %v, want ErrNotFound", err)
	}

	_ = svc.Remove("beta")
	if svc.GetActive() != nil {
		t.Error("no profile should be active after removing all")
	}
}

func TestTokenFor(t *testing.T) {
	svc, _ := newTestService(t, "")
	_, _ = svc.Add("octocat", "", "secret")

	if got := svc.TokenFor("OCTOCAT"); got != "secret" {
		t.Errorf("TokenFor() = %q", got)
	}
	if got := svc.TokenFor("hubot"); got != "" {
		t.Errorf("TokenFor(unknown) = %q", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantLogins []string
		wantActive string
		wantErr    bool
	}{
		{"Empty", "", nil, "", false},
		{"Whitespace", "  \n", nil, "", false},
		{"File", `{"profiles":[{"id":"p1","login":"a"},{"id":"p2","login":"b"}],"active":"p2"}`, []string{"a", "b"}, "p2", false},
		{"LoginArray", `["a", " b ", ""]`, []string{"a", "b"}, "", false},
		{"Garbage", `not json`, nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles, active, err := parse([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if active != tt.wantActive {
				t.Errorf("active = %q, want %q", active, tt.wantActive)
			}
			if len(profiles) != len(tt.wantLogins) {
				t.Fatalf("profiles = %+v", profiles)
			}
			for i, l := range tt.wantLogins {
				if profiles[i].Login != l {
					t.Errorf("profiles[%d].Login = %q, want %q", i, profiles[i].Login, l)
				}
			}
		})
	}
}

func TestLoad_UnknownActiveFallsBackToFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	data := `{"profiles":[{"id":"p1","login":"a"}],"active":"gone"}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	svc, err := New(path, "")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer svc.Close()

	if svc.ActiveLogin() != "a" {
		t.Errorf("ActiveLogin() = %q, want a", svc.ActiveLogin())
	}
}

func TestNew_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := os.WriteFile(path, []byte("{{{"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path, ""); err == nil {
		t.Error("New() should fail on an unparseable file")
	}
}

func TestWatch_ExternalChange(t *testing.T) {
	svc, path := newTestService(t, "")

	// Drain the load event.
	for len(svc.Events()) > 0 {
		<-svc.Events()
	}

	data := `{"profiles":[{"id":"ext","login":"external"}],"active":"ext"}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-svc.Events():
			if ev.Type == EventProfilesChanged {
				if svc.ActiveLogin() != "external" {
					t.Errorf("ActiveLogin() = %q after reload", svc.ActiveLogin())
				}
				return
			}
		case <-deadline:
			t.Fatal("external change not picked up")
		}
	}
}

func TestWatch_OwnSavesDoNotReload(t *testing.T) {
	svc, _ := newTestService(t, "")

	if _, err := svc.Add("octocat", "", ""); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if _, err := svc.Add("hubot", "", ""); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if err := svc.SetActive("hubot"); err != nil {
		t.Fatalf("SetActive() failed: %v", err)
	}
	if err := svc.Remove("octocat"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}

	// Outlast the watcher debounce.
	time.Sleep(500 * time.Millisecond)

	for len(svc.Events()) > 0 {
		if ev := <-svc.Events(); ev.Type == EventProfilesChanged {
			t.Error("own save triggered a reload")
		}
	}
	if svc.ActiveLogin() != "hubot" {
		t.Errorf("ActiveLogin() = %q, want hubot", svc.ActiveLogin())
	}
}

func TestClose_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	svc, err := New(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestSendEvent_DropsOldest(t *testing.T) {
	svc, _ := newTestService(t, "")
	for len(svc.Events()) > 0 {
		<-svc.Events()
	}

	for range 120 {
		svc.sendEvent(Event{Type: EventProfileAdded})
	}
	svc.sendEvent(Event{Type: EventError})

	if got := len(svc.Events()); got != 100 {
		t.Errorf("buffered = %d, want 100", got)
	}
}

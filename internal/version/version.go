// Package version provides build version information and runtime metadata.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

var (
	// These are set via ldflags at build time
	Version = ""
	Commit  = ""
	Date    = ""

	once sync.Once

	readBuildInfo = debug.ReadBuildInfo
)

// Name is the program name shown in version output and the User-Agent.
const Name = "langstats-tui"

func ensureInitialized() {
	once.Do(func() {
		info, ok := readBuildInfo()
		if !ok {
			info = nil
		}
		if Version == "" {
			Version = moduleVersion(info)
		}
		if Commit == "" {
			Commit = buildSetting(info, "vcs.revision", "unknown")
			if len(Commit) > 12 {
				Commit = Commit[:12]
			}
			if buildSetting(info, "vcs.modified", "false") == "true" {
				Commit += "-dirty"
			}
		}
		if Date == "" {
			Date = buildSetting(info, "vcs.time", "unknown")
		}
	})
}

func moduleVersion(info *debug.BuildInfo) string {
	if info == nil {
		return "dev"
	}
	v := info.Main.Version
	if v == "" || v == "(devel)" {
		return "dev"
	}
	return strings.TrimPrefix(v, "v")
}

func buildSetting(info *debug.BuildInfo, key, fallback string) string {
	if info == nil {
		return fallback
	}
	for _, s := range info.Settings {
		if s.Key == key && s.Value != "" {
			return s.Value
		}
	}
	return fallback
}

// Reset clears the resolved build metadata so it is computed again.
func Reset() {
	Version, Commit, Date = "", "", ""
	once = sync.Once{}
}

// Short returns only the version string.
func Short() string {
	ensureInitialized()
	return Version
}

// Info returns a one-line description of the build.
func Info() string {
	ensureInitialized()
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s/%s)",
		Name, Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}

// Package version exposes build metadata extracted from the Go build system.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the release version, overridden at build time via
// -ldflags "-X deepcrawl/internal/version.Version=v1.2.3".
var Version = "dev"

// Info holds the resolved build metadata.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Modified  bool   `json:"modified"`
}

// Get resolves version information from the embedded build info.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: "unknown",
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.GitCommit = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}

	return info
}

// Short returns just the version string.
func Short() string {
	return Get().Version
}

// Detailed returns a multi-line human-readable rendition.
func Detailed() string {
	info := Get()
	commit := info.GitCommit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	out := fmt.Sprintf("deepcrawl %s\ncommit:     %s\ngo version: %s\nplatform:   %s",
		info.Version, commit, info.GoVersion, info.Platform)
	if info.Modified {
		out += "\n(built from modified source)"
	}
	return out
}

// JSON returns the version info as a JSON object.
func JSON() string {
	data, err := json.MarshalIndent(Get(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

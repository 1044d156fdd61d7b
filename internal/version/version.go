// Package version exposes the build metadata stamped into the vagrant
// binary.
//
// Release builds stamp the package variables through -ldflags -X, e.g.
//
//	go build -ldflags "-X github.com/lseinc/vagrant/internal/version.Version=1.2.3"
//
// Development builds leave them unset (Version reads "dev", the others are
// empty) and commit metadata is recovered from the VCS settings the Go
// module system records, resolved at read time rather than in an init hook
// so tests can substitute values freely.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Stamped via ldflags at release time.
var (
	// Version is the semantic version, "dev" when unstamped.
	Version = "dev"

	// Commit is the full git commit SHA.
	Commit = ""

	// Date is the build timestamp in RFC3339 format.
	Date = ""

	// TreeState is "clean" or "dirty".
	TreeState = ""
)

// ApplicationName is the canonical name of this application.
const ApplicationName = "vagrant"

// Info is the resolved build metadata.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	TreeState string `json:"tree_state,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo resolves the build metadata, preferring stamped values and
// falling back to module VCS information.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		TreeState: TreeState,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if info.Commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range bi.Settings {
				switch setting.Key {
				case "vcs.revision":
					info.Commit = setting.Value
				case "vcs.time":
					if info.Date == "" {
						info.Date = setting.Value
					}
				case "vcs.modified":
					if info.TreeState == "" {
						info.TreeState = "clean"
						if setting.Value == "true" {
							info.TreeState = "dirty"
						}
					}
				}
			}
		}
	}

	return info
}

// shortCommit is the 8-character commit form, suffixed with * for a dirty
// tree. Empty when no commit is known.
func (i Info) shortCommit() string {
	if len(i.Commit) < 8 {
		return ""
	}
	sha := i.Commit[:8]
	if i.TreeState == "dirty" {
		sha += "*"
	}
	return sha
}

// String returns a human-readable version line.
func String() string {
	i := GetInfo()

	var b strings.Builder
	fmt.Fprintf(&b, "%s version %s", ApplicationName, i.Version)
	if sha := i.shortCommit(); sha != "" {
		fmt.Fprintf(&b, " (%s)", sha)
	}
	if i.Date != "" {
		fmt.Fprintf(&b, " built %s", i.Date)
	}
	fmt.Fprintf(&b, ", %s %s", i.GoVersion, i.Platform)
	return b.String()
}

// Short returns a compact version string suitable for CLI --version
// output. Cobra prefixes the application name itself.
func Short() string {
	i := GetInfo()
	if sha := i.shortCommit(); sha != "" {
		return i.Version + "+" + sha
	}
	return i.Version
}

// JSON returns the version info as indented JSON for machine parsing.
func JSON() string {
	data, err := json.MarshalIndent(GetInfo(), "", "  ")
	if err != nil {
		return fmt.Sprintf("{%q: %q}", "error", err.Error())
	}
	return string(data)
}

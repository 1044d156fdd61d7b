package builtin

import (
	"log/slog"
	"runtime"

	"github.com/lseinc/vagrant/internal/plugin"
)

// goosHost is the shared shape of the GOOS-matching host components.
type goosHost struct {
	plugin.RequestMetadata

	name  string
	match []string
	log   *slog.Logger
}

// DetectFunc returns the platform detection function.
func (h *goosHost) DetectFunc() interface{} {
	return h.detect
}

func (h *goosHost) detect() (bool, error) {
	for _, goos := range h.match {
		if runtime.GOOS == goos {
			h.log.Debug("host matched platform",
				slog.String("host", h.name),
				slog.String("goos", runtime.GOOS),
			)
			return true, nil
		}
	}
	return false, nil
}

// NewLinuxHost is the factory for the linux host component.
func NewLinuxHost(log *slog.Logger) (plugin.Host, error) {
	return &goosHost{name: "linux", match: []string{"linux"}, log: log}, nil
}

// NewBSDHost is the factory for the bsd host component.
func NewBSDHost(log *slog.Logger) (plugin.Host, error) {
	return &goosHost{
		name:  "bsd",
		match: []string{"freebsd", "openbsd", "netbsd", "dragonfly"},
		log:   log,
	}, nil
}

// NewDarwinHost is the factory for the darwin host component.
func NewDarwinHost(log *slog.Logger) (plugin.Host, error) {
	return &goosHost{name: "darwin", match: []string{"darwin"}, log: log}, nil
}

var _ plugin.Host = (*goosHost)(nil)

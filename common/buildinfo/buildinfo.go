package buildinfo

import (
	"runtime/debug"
	"strings"
)

// Version is set at link time:
//
//	go build -ldflags "-X github.com/lyzr/line-relay/common/buildinfo.Version=1.4.0" ./cmd/relay
var Version = ""

// Current returns the build version. Falls back to the module version and
// then the VCS revision recorded by the toolchain, and "dev" when neither exists.
func Current() string {
	info, _ := debug.ReadBuildInfo()
	return resolve(Version, info)
}

func resolve(linked string, info *debug.BuildInfo) string {
	if v := strings.TrimSpace(linked); v != "" {
		return v
	}
	if info == nil {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	var revision string
	var modified bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if revision == "" {
		return "dev"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if modified {
		revision += "-dirty"
	}
	return revision
}

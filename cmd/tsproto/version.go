package main

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// Version returns the module version for `go install ...@version` builds,
// and "devel-<VERSION>+<revision>" otherwise.
func Version() string {
	return version(strings.TrimSpace(embeddedVersion), debug.ReadBuildInfo)
}

func version(base string, read func() (*debug.BuildInfo, bool)) string {
	info, ok := read()
	if !ok {
		return base
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return "devel-" + base + "+" + s.Value[:7]
		}
	}
	return "devel-" + base
}

// Package buildinfo exposes version data set with -ldflags -X, falling back
// to the VCS stamp the Go toolchain embeds.
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = ""
	BuiltAt = ""
)

func Info() map[string]string {
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}
	return map[string]string{
		"version":   Version,
		"commit":    commit,
		"builtAt":   BuiltAt,
		"goVersion": runtime.Version(),
	}
}

func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

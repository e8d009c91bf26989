// Package version reports the build that is running.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via ldflags. When left empty the VCS stamp recorded by
// the go tool is used instead.
var (
	Commit    = ""
	BuildTime = ""
)

// String returns the version line shown by `flairbot --version`.
func String() string {
	commit, built := Commit, BuildTime
	if commit == "" || built == "" {
		vcsCommit, vcsTime, modified := fromBuildInfo(debug.ReadBuildInfo)
		if commit == "" {
			commit = vcsCommit
			if modified {
				commit += "+dirty"
			}
		}
		if built == "" {
			built = vcsTime
		}
	}
	return fmt.Sprintf("flairbot dev (commit: %s, built: %s)", short(orUnknown(commit)), orUnknown(built))
}

func fromBuildInfo(read func() (*debug.BuildInfo, bool)) (commit, built string, modified bool) {
	info, ok := read()
	if !ok {
		return "", "", false
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			commit = setting.Value
		case "vcs.time":
			built = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	return commit, built, modified
}

func short(commit string) string {
	if len(commit) > 7 && commit[7] != '+' {
		suffix := ""
		if n := len(commit); n > 6 && commit[n-6:] == "+dirty" {
			suffix = "+dirty"
		}
		return commit[:7] + suffix
	}
	return commit
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

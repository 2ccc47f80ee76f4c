package build

import (
	"runtime/debug"
	"time"
)

var (
	commit  = ""
	date    = ""
	version = "dev"
	repoURL = ""
)

func init() {
	date, _ := time.Parse(time.RFC3339, date)

	Current = Build{
		Commit:  commit,
		Version: version,
		Date:    date,
		RepoURL: repoURL,
	}

	// go install leaves the linker flags unset but records the module version.
	if info, ok := debug.ReadBuildInfo(); ok && Current.Version == "dev" {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			Current.Version = v
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && Current.Commit == "" {
				Current.Commit = s.Value
			}
		}
	}
}

var Current Build

type Build struct {
	Commit  string    `json:"commit,omitempty"`
	Version string    `json:"version,omitempty"`
	Date    time.Time `json:"date,omitempty"`
	RepoURL string    `json:"repo_url,omitempty"`
}

// String is the version line printed by --version.
func (b Build) String() string {
	s := b.Version
	if b.Commit != "" {
		s += " (" + shortCommit(b.Commit) + ")"
	}
	return s
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

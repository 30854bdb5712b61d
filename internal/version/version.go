package version

import (
	"runtime/debug"
	"strings"
)

// Version is the version of the clientbuild binary.
// It is set using `go build -ldflags "-X clientbuild.dev/internal/version.Version=v1.2.3"`.
var Version string

// Channel tells us which ReleaseChannel this build is under.
var Channel ReleaseChannel

type ReleaseChannel string

const (
	GA       ReleaseChannel = "ga"      // A tagged release in Semver: v1.10.0
	DevBuild ReleaseChannel = "devel"   // A development build with the commit of the build: devel-0140ab0f78fd
	unknown  ReleaseChannel = "unknown" // An unknown release stream
)

func init() {
	// If version is already set via a compiler link flag, then we don't need to do anything
	if Version == "" {
		Version = fromBuildInfo()
	}
	Channel = channelFor(Version)
}

func fromBuildInfo() string {
	version := "devel"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}

	revision, modified := "", ""
	for _, p := range info.Settings {
		switch p.Key {
		case "vcs.revision":
			revision = p.Value
		case "vcs.modified":
			if p.Value == "true" {
				modified = "-modified"
			}
		}
	}
	if revision != "" {
		version += "-" + revision + modified
	}
	return version
}

func channelFor(version string) ReleaseChannel {
	switch {
	case strings.HasPrefix(version, "v"):
		return GA
	case strings.HasPrefix(version, "devel-") || version == "devel":
		return DevBuild
	default:
		return unknown
	}
}

// String reports the version together with its release channel.
func String() string {
	return Version + " (" + string(Channel) + ")"
}

// Banner is the comment prepended to every bundle.
func Banner() string {
	return "// Built by clientbuild " + Version
}

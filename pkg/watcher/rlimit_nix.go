//go:build linux || darwin

package watcher

import (
	"syscall"

	"github.com/rs/zerolog"
)

// raiseFileLimit raises the soft limit on open files to the hard limit,
// since fsnotify holds a descriptor per watched directory on some platforms.
func raiseFileLimit(logger zerolog.Logger) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn().Err(err).Msg("failed to get open file limit")
		return
	}
	if rLimit.Cur >= rLimit.Max {
		return
	}
	rLimit.Cur = rLimit.Max
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn().Err(err).Msg("failed to raise open file limit")
	}
}

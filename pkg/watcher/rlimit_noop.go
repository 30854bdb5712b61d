//go:build !linux && !darwin

package watcher

import "github.com/rs/zerolog"

func raiseFileLimit(zerolog.Logger) {}

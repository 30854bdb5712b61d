// Package environ provides a snapshot of a process environment that can be
// passed around explicitly instead of consulting os.Getenv.
package environ

import (
	"os"
	"slices"
)

// Environ is a slice of strings representing the environment of a process,
// in the same "key=value" format as os.Environ.
type Environ []string

// OS snapshots the environment of the current process.
func OS() Environ {
	return Environ(os.Environ())
}

// Get retrieves the value of the environment variable named by the key.
// It returns the value, which will be empty if the variable is not present.
// To distinguish between an empty value and an unset value, use Lookup.
func (e Environ) Get(key string) string {
	v, _ := e.Lookup(key)
	return v
}

// Lookup retrieves the value of the environment variable named
// by the key. If the variable is present the value (which may be
// empty) is returned and the boolean is true.
//
// If a key occurs multiple times the last occurrence wins,
// matching how exec treats duplicate entries.
func (e Environ) Lookup(key string) (string, bool) {
	for i := len(e) - 1; i >= 0; i-- {
		env := e[i]
		if len(env) > len(key) && env[len(key)] == '=' && env[:len(key)] == key {
			return env[len(key)+1:], true
		}
	}
	return "", false
}

// With returns a copy of e with key set to value.
// The receiver is not modified.
func (e Environ) With(key, value string) Environ {
	out := slices.DeleteFunc(slices.Clone(e), func(env string) bool {
		return len(env) > len(key) && env[len(key)] == '=' && env[:len(key)] == key
	})
	return append(out, key+"="+value)
}

package core

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Env is a read-only view of environment variables.
// Detection code reads the environment only through it, so tests and
// `--env-file` replays can substitute their own values.
type Env interface {
	Lookup(key string) (string, bool)
}

// OSEnv reads the process environment.
type OSEnv struct{}

func (OSEnv) Lookup(key string) (string, bool) { return os.LookupEnv(key) }

// MapEnv is an in-memory environment.
type MapEnv map[string]string

func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Getenv returns the value of key, or "" when unset.
func Getenv(env Env, key string) string {
	v, _ := env.Lookup(key)
	return v
}

// IsSet reports whether key is present, even when empty.
func IsSet(env Env, key string) bool {
	_, ok := env.Lookup(key)
	return ok
}

type overlayEnv struct {
	values map[string]string
	base   Env
}

func (o overlayEnv) Lookup(key string) (string, bool) {
	if v, ok := o.values[key]; ok {
		return v, true
	}
	return o.base.Lookup(key)
}

// LoadEnvFile layers the KEY=VALUE pairs of a dotenv file over base.
// Variables in the file win over the ones in base.
func LoadEnvFile(path string, base Env) (Env, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("env file %s could not be read: %w", path, err)
	}
	return overlayEnv{values: values, base: base}, nil
}

// SplitList splits a colon separated path list, dropping empty entries.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ":") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

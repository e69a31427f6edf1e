// Package storage is the persistent key-value store behind a companion
// profile. Values are encoded as small TOML documents so every backend holds
// the same bytes.
package storage

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

var ErrClosed = errors.New("store is closed")

// Store is a flat namespace of named values.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

type envelope[T any] struct {
	V T `toml:"v"`
}

// Load decodes key into a T, returning def when the key is missing.
func Load[T any](s Store, key string, def T) (T, error) {
	data, ok, err := s.Get(key)
	if err != nil {
		return def, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return def, nil
	}
	env := envelope[T]{V: def}
	if err := toml.Unmarshal(data, &env); err != nil {
		return def, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return env.V, nil
}

// Save encodes v under key.
func Save[T any](s Store, key string, v T) error {
	data, err := encode(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.Set(key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func encode[T any](v T) ([]byte, error) {
	return toml.Marshal(envelope[T]{V: v})
}

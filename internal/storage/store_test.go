package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry struct {
	ID          string    `toml:"id"`
	Activity    string    `toml:"activityName"`
	CompletedAt time.Time `toml:"completedAt"`
}

type slots struct {
	Hat     string `toml:"hat"`
	Clothes string `toml:"clothes"`
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	file, err := OpenFile(filepath.Join(dir, "profile.toml"))
	require.NoError(t, err)

	db, err := OpenSQLite(filepath.Join(dir, "profile.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		"file":   file,
		"sqlite": db,
		"memory": NewMemory(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestRoundTrip(t *testing.T) {
	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Save(s, "drachma", 1250))
			require.NoError(t, Save(s, "companionName", "PELI"))
			require.NoError(t, Save(s, "inventory", []string{"apple", "apple", "hat_cap"}))
			require.NoError(t, Save(s, "equippedItems", slots{Hat: "hat_cap"}))
			require.NoError(t, Save(s, "activityHistory", []logEntry{
				{ID: "b", Activity: "Feeding", CompletedAt: when.Add(time.Minute)},
				{ID: "a", Activity: "Bath Time", CompletedAt: when},
			}))

			balance, err := Load(s, "drachma", 1000)
			require.NoError(t, err)
			assert.Equal(t, 1250, balance)

			companion, err := Load(s, "companionName", "")
			require.NoError(t, err)
			assert.Equal(t, "PELI", companion)

			inv, err := Load[[]string](s, "inventory", nil)
			require.NoError(t, err)
			assert.Equal(t, []string{"apple", "apple", "hat_cap"}, inv)

			eq, err := Load(s, "equippedItems", slots{})
			require.NoError(t, err)
			assert.Equal(t, slots{Hat: "hat_cap"}, eq)

			hist, err := Load[[]logEntry](s, "activityHistory", nil)
			require.NoError(t, err)
			require.Len(t, hist, 2)
			assert.Equal(t, "Feeding", hist[0].Activity)
			assert.True(t, when.Equal(hist[1].CompletedAt))
		})
	}
}

func TestMissingKeyUsesDefault(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			v, err := Load(s, "drachma", 1000)
			require.NoError(t, err)
			assert.Equal(t, 1000, v)

			require.NoError(t, Save(s, "drachma", 5))
			require.NoError(t, s.Delete("drachma"))

			v, err = Load(s, "drachma", 1000)
			require.NoError(t, err)
			assert.Equal(t, 1000, v)
		})
	}
}

func TestKeys(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Save(s, "theme", "dark"))
			require.NoError(t, Save(s, "drachma", 1))

			keys, err := s.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{"drachma", "theme"}, keys)
		})
	}
}

func TestFileStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".pelioscope", "profile.toml")

	s, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, Save(s, "lastFedTime", int64(1700000000000)))
	require.NoError(t, Save(s, "theme", "dark"))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "theme = 'dark'") || strings.Contains(string(data), `theme = "dark"`))

	s, err = OpenFile(path)
	require.NoError(t, err)
	fed, err := Load(s, "lastFedTime", int64(0))
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), fed)
}

func TestClosedStore(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Close())

	err := Save(s, "theme", "light")
	assert.ErrorIs(t, err, ErrClosed)
}

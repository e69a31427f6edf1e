package discovery

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DirName     = ".pelioscope"
	ProfileFile = "profile.toml"
	DBFile      = "profile.db"
	ConfigFile  = "config.toml"
)

// FindProfile walks up from startDir looking for a .pelioscope directory
// holding a profile, either as TOML or SQLite.
func FindProfile(startDir string) (string, bool, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}

	for {
		for _, name := range []string{ProfileFile, DBFile} {
			p := filepath.Join(dir, DirName, name)
			if _, err := os.Stat(p); err == nil {
				return p, true, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", false, nil
}

func GlobalProfilePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DirName, ProfileFile)
}

// ConfigPathFor returns the config file that sits next to a profile.
func ConfigPathFor(profilePath string) string {
	return filepath.Join(filepath.Dir(profilePath), ConfigFile)
}

// Resolve picks the profile to use: an explicit path, else the nearest
// project profile, else the global one.
func Resolve(explicit, startDir string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	p, ok, err := FindProfile(startDir)
	if err != nil {
		return "", err
	}
	if ok {
		return p, nil
	}
	return GlobalProfilePath(), nil
}

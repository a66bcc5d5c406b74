// Package profile resolves the on-disk layout of an atendo profile.
// Everything lives under ~/.atendo: one shared config.toml, then one
// directory per profile holding its cache database, lock and logs.
package profile

import (
	"os"
	"path/filepath"
)

// BaseDir is ~/.atendo.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".atendo")
}

// ConfigPath is the shared config file, common to all profiles.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// Dir is the root of one profile.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// LockPath is the profile's single-writer lock file.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// CacheDBPath is the profile's offline cache database.
func CacheDBPath(name string) string {
	return filepath.Join(Dir(name), "atendo.db")
}

// LogDir is the profile's log directory.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath is the dashboard's log file. Logs go to a file because stdout
// belongs to the terminal UI.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "atendo.log")
}

// EnsureDir creates the profile directory tree.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}

// Package dirs resolves the OS-specific directories a client application
// stores its files in.
package dirs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// App resolves directories for one application name.
type App struct {
	Name string
}

// For creates a resolver for the given application name.
func For(name string) App {
	return App{Name: name}
}

// UserConfig returns the per-user configuration directory.
func (a App) UserConfig() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, a.Name), nil
}

// UserCache returns the per-user cache directory.
func (a App) UserCache() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}
	return filepath.Join(base, a.Name), nil
}

// UserData returns the per-user data directory.
func (a App) UserData() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" && runtime.GOOS != "windows" && runtime.GOOS != "darwin" {
		return filepath.Join(dir, a.Name), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user data dir: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LocalAppData"); dir != "" {
			return filepath.Join(dir, a.Name), nil
		}
		return filepath.Join(home, "AppData", "Local", a.Name), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", a.Name), nil
	default:
		return filepath.Join(home, ".local", "share", a.Name), nil
	}
}

// UserState returns the per-user state directory, used for logs and other
// machine-local files.
func (a App) UserState() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" && runtime.GOOS != "windows" && runtime.GOOS != "darwin" {
		return filepath.Join(dir, a.Name), nil
	}

	switch runtime.GOOS {
	case "windows", "darwin":
		return a.UserData()
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve user state dir: %w", err)
		}
		return filepath.Join(home, ".local", "state", a.Name), nil
	}
}

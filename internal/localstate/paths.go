package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome        = "NUCLEAI_HOME" // override for tests
	dirName        = ".nucleai"     // default under $HOME
	cookieFilename = "simdb-cookies.json"
	dbFilename     = "cache.db"
)

// DataDir returns the directory where local state is stored (~/.nucleai).
// It creates the directory with 0700 permissions if it does not exist.
func DataDir() (string, error) {
	if custom := os.Getenv(envHome); custom != "" {
		if err := os.MkdirAll(custom, 0o700); err != nil {
			return "", err
		}
		return custom, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user home: %w", err)
	}
	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// CookiePath returns the absolute path to the cached SimDB session cookies.
func CookiePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cookieFilename), nil
}

// DBPath returns the absolute path to the local SQLite cache file.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFilename), nil
}

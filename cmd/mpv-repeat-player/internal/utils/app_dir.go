package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	preferencesSubdir = "preferences"
)

var (
	appDirId          = "mrp"
	defaultAppDirName = fmt.Sprintf(".%s", appDirId)
	subdirs           = []string{
		preferencesSubdir,
	}
)

// HandleAppDir ensures the application directory with its subdirectories exists.
// Empty appDir resolves to ~/.mrp, or to the temporary directory when home is unknown.
func HandleAppDir(appDir string) (string, error) {
	if appDir == "" {
		appDir = getDefaultAppDir()
	}

	err := ensureAppDirs(appDir)
	return appDir, err
}

// PreferencesPath returns directory of the preferences database.
func PreferencesPath(appDir string) string {
	return filepath.Join(appDir, preferencesSubdir)
}

func ensureAppDirs(basePath string) error {
	for _, subdir := range subdirs {
		dirPath := filepath.Join(basePath, subdir)
		err := os.MkdirAll(dirPath, 0750)
		if err != nil {
			return err
		}
	}

	return nil
}

func getDefaultAppDir() string {
	var appPathDefaultBase string
	homeDir, err := os.UserHomeDir()
	if err != nil {
		appPathDefaultBase = os.TempDir()
	} else {
		appPathDefaultBase = homeDir
	}

	return filepath.Join(appPathDefaultBase, defaultAppDirName)
}

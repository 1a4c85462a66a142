package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindRoot looks upwards from startDir for a directory holding a
// ConfigFile and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFile) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

// ResolveConfigPath returns explicit when set, else the ConfigFile of the
// nearest root above the working directory, else ConfigFile in it.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if root, err := FindRoot("."); err == nil {
		return filepath.Join(root, ConfigFile)
	}
	return ConfigFile
}

func hasFile(dir, name string) bool {
	path := filepath.Join(dir, name)
	_, err := os.Stat(path)
	return err == nil
}

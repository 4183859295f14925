package loader

import (
	"os"
	"path/filepath"
)

func readFileAbs(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

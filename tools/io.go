package tools

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// Reads the whole content of the given file
func ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", filePath)
	}
	return data, nil
}

// Writes data to the given file, creating its parent directories if they do not exist
func WriteFile(filePath string, data []byte) error {
	if err := CreateDirectoryIfDoesNotExist(filepath.Dir(filePath)); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, 0666); err != nil {
		return errors.Wrapf(err, "cannot write %s", filePath)
	}
	return nil
}

func CreateDirectoryIfDoesNotExist(directory string) error {
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		err := os.MkdirAll(directory, 0777)
		if err != nil {
			return errors.Wrapf(err, "cannot create directory %s", directory)
		}
	}
	return nil
}

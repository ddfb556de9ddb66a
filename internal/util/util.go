package util

import "os"

func AsPtr[T any](v T) *T {
	return &v
}

func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	return false, err
}

package util

import "os"

func IsValidPath(path Path) bool {
	_, err := os.Stat(path)
	return err == nil
}

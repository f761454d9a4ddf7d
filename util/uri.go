package util

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
)

func URI2Path(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if isWindowsDriveURIPath(u.Path) {
		u.Path = strings.ToUpper(string(u.Path[1])) + u.Path[2:]
	}
	return filepath.FromSlash(u.Path), nil
}

func Path2URI(path string) URI {
	if runtime.GOOS == "windows" {
		path = "/" + strings.ReplaceAll(path, "\\", "/")
	}
	return "file://" + path
}

func isWindowsDriveURIPath(uri string) bool {
	if len(uri) < 4 {
		return false
	}
	return uri[0] == '/' && unicode.IsLetter(rune(uri[1])) && uri[2] == ':'
}

package util

type Path = string
type URI = string

// Handle pairs the two names a document is known by: the URI the client
// uses and the filesystem path the server uses.
type Handle struct {
	URI  URI
	Path Path
}

func FromPath(path Path) Handle {
	return Handle{Path2URI(path), path}
}

func FromURI(uri URI) (Handle, error) {
	path, err := URI2Path(uri)
	return Handle{uri, path}, err
}

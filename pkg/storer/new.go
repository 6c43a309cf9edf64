package storer

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// New creates a storer based on the `uri` string: "stdout" (or empty), "stderr", or
// "file:<path>".
func New(uri string) (Storer, error) {
	switch {
	case uri == "", strings.EqualFold(uri, "stdout"):
		return NewLogStorer(os.Stdout), nil
	case strings.EqualFold(uri, "stderr"):
		return NewLogStorer(os.Stderr), nil
	case strings.HasPrefix(uri, "file:"):
		path := strings.TrimPrefix(uri, "file:")
		if path == "" {
			return nil, errors.New("file storer requires a path")
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", path, err)
		}
		return &LogStorer{w: f, closer: f}, nil
	default:
		return nil, errors.New("unsupported storer uri format")
	}
}

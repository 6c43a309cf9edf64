package storer

import (
	"context"
	"encoding/json"
	"io"
)

// LogStorer writes snapshots as indented JSON.
type LogStorer struct {
	w      io.Writer
	closer io.Closer
}

// NewLogStorer returns a thin storer which writes JSON output to the provided writer.
func NewLogStorer(w io.Writer) Storer {
	return &LogStorer{
		w: w,
	}
}

// SaveSnapshot writes the snapshot.
func (l *LogStorer) SaveSnapshot(ctx context.Context, s Snapshot) error {
	j := json.NewEncoder(l.w)
	j.SetIndent("", "  ")
	return j.Encode(s)
}

// Close closes the underlying file, if the storer owns one.
func (l *LogStorer) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

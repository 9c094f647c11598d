package storage

import (
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"
)

// MaxListCap bounds the page size of a single List call.
const MaxListCap int32 = 5000

// Blob is an open blob stream with its content headers.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// BlobMeta describes a stored blob.
type BlobMeta struct {
	Key           string     `json:"key"`
	ContentType   string     `json:"content_type"`
	ContentLength int64      `json:"content_length"`
	LastModified  *time.Time `json:"last_modified,omitempty"`
}

// BlobList is one page of List results. NextMarker is empty on the last page.
type BlobList struct {
	Blobs      []BlobMeta `json:"blobs"`
	NextMarker string     `json:"next_marker,omitempty"`
}

// ParseMaxResults parses a max_results query value, returning fallback when empty
// and clamping to MaxListCap.
func ParseMaxResults(s string, fallback int32) (int32, error) {
	if s == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxResults, s)
	}

	return int32(min(n, int(MaxListCap))), nil
}

// Key joins a prefix and path segments into a storage key.
// The last segment is reduced to its base name.
func Key(prefix string, segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, strings.Trim(prefix, "/"))
	for i, s := range segments {
		if i == len(segments)-1 {
			s = path.Base(strings.ReplaceAll(s, "\\", "/"))
		}
		parts = append(parts, strings.Trim(s, "/"))
	}
	return strings.Join(parts, "/")
}

// Package storage persists uploaded media (sermon audio, page images)
// behind a billy filesystem so production writes to disk while tests run
// against an in-memory filesystem.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// MediaStore writes and serves uploaded files. Files are stored under
// <parishID>/<sha256-prefix><ext>, so re-uploading identical content is
// idempotent and filenames never collide or leak user input.
type MediaStore struct {
	fs         billy.Filesystem
	publicBase string
}

// New creates a MediaStore rooted at dir on the local filesystem.
func New(dir, publicBase string) *MediaStore {
	return NewWithFS(osfs.New(dir), publicBase)
}

// NewWithFS creates a MediaStore over an arbitrary billy filesystem.
// Tests pass memfs.New().
func NewWithFS(fs billy.Filesystem, publicBase string) *MediaStore {
	if !strings.HasSuffix(publicBase, "/") {
		publicBase += "/"
	}
	return &MediaStore{fs: fs, publicBase: publicBase}
}

// Save stores the content of r for the given parish and returns the
// storage path. ext must include the leading dot (".mp3", ".jpg").
func (m *MediaStore) Save(parishID, ext string, r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	sum := sha256.Sum256(content)
	name := hex.EncodeToString(sum[:16]) + strings.ToLower(ext)
	p := path.Join(parishID, name)

	if err := m.fs.MkdirAll(parishID, 0o755); err != nil {
		return "", fmt.Errorf("creating parish media dir: %w", err)
	}
	f, err := m.fs.Create(p)
	if err != nil {
		return "", fmt.Errorf("creating media file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		return "", fmt.Errorf("writing media file: %w", err)
	}
	return p, nil
}

// Open returns a reader over a stored file.
func (m *MediaStore) Open(storagePath string) (io.ReadCloser, error) {
	f, err := m.fs.Open(storagePath)
	if err != nil {
		return nil, fmt.Errorf("opening media file %q: %w", storagePath, err)
	}
	return f, nil
}

// Remove deletes a stored file. Removing a file that is already gone is
// not an error.
func (m *MediaStore) Remove(storagePath string) error {
	if err := m.fs.Remove(storagePath); err != nil {
		if _, statErr := m.fs.Stat(storagePath); statErr != nil {
			return nil
		}
		return fmt.Errorf("removing media file %q: %w", storagePath, err)
	}
	return nil
}

// PublicURL maps a storage path to the URL it is served from.
func (m *MediaStore) PublicURL(storagePath string) string {
	return m.publicBase + storagePath
}

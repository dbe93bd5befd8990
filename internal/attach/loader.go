package attach

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageBytes caps uploaded story images.
const MaxImageBytes = 5 * 1024 * 1024

// ErrNotImage is returned when a file's sniffed content type is not image/*.
var ErrNotImage = errors.New("file is not an image")

// Attachment holds an image loaded for upload.
type Attachment struct {
	Name string
	MIME string
	Data []byte
	Hash string // "sha256:<hex>"
}

// Load reads an image from disk, sniffs its MIME type, and hashes it.
func Load(path string) (*Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("reading image file: %s is a directory", path)
	}
	if info.Size() > MaxImageBytes {
		return nil, fmt.Errorf("image %s is %d bytes, limit is %d", filepath.Base(path), info.Size(), MaxImageBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image file: %w", err)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%s (%s): %w", filepath.Base(path), mime, ErrNotImage)
	}

	sum := sha256.Sum256(data)
	return &Attachment{
		Name: filepath.Base(path),
		MIME: mime,
		Data: data,
		Hash: fmt.Sprintf("sha256:%x", sum),
	}, nil
}

// LoadText reads a story body from disk. Surrounding whitespace is trimmed
// and CRLF line endings are normalized.
func LoadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading story file: %w", err)
	}
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.TrimSpace(s), nil
}

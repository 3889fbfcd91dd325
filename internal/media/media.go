// Package media stores uploaded photos and pattern PDFs under fresh names.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/craftfolder/internal/storage"
)

// URLPrefix is where the API serves stored files.
const URLPrefix = "/api/media/"

// MaxSize caps a single stored file.
const MaxSize = 50 << 20 // 50 MB

// ErrUnsupported rejects content that is not an accepted image or PDF.
var ErrUnsupported = errors.New("media: unsupported content")

// mimeToExt lists accepted content types and the extension stored files get.
var mimeToExt = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// Stored describes a saved file.
type Stored struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	URL         string `json:"url"`
}

// Save sniffs data, rejects anything but images and PDFs and writes it under
// a new uuid name. Client-supplied names never reach the disk.
func Save(files storage.Provider, data []byte) (Stored, error) {
	if len(data) > MaxSize {
		return Stored{}, fmt.Errorf("%w: file too large: %d bytes (max %d)", ErrUnsupported, len(data), MaxSize)
	}
	ct := Sniff(data)
	ext, ok := mimeToExt[ct]
	if !ok {
		return Stored{}, fmt.Errorf("%w: %s", ErrUnsupported, ct)
	}

	name := uuid.NewString() + ext
	if err := files.Write(name, data); err != nil {
		return Stored{}, fmt.Errorf("media: write %s: %w", name, err)
	}
	return Stored{
		Filename:    name,
		Size:        int64(len(data)),
		ContentType: ct,
		URL:         URLPrefix + name,
	}, nil
}

// Sniff returns the bare content type of data.
func Sniff(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// DecodeDataURI parses a base64 data:[<mediatype>];base64,<data> URI and
// checks that the declared type matches the content.
func DecodeDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("invalid data URI: missing data: scheme")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URI: missing comma separator")
	}
	if !strings.Contains(meta, ";base64") {
		return nil, fmt.Errorf("only base64 data URIs are supported")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
	}

	declared := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	if _, ok := mimeToExt[declared]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, declared)
	}
	if got := Sniff(data); got != declared {
		return nil, fmt.Errorf("%w: content does not match %s (detected: %s)", ErrUnsupported, declared, got)
	}
	return data, nil
}

// SafeName accepts only a plain, non-hidden file name.
func SafeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	return name, nil
}

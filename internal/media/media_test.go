package media

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/craftfolder/internal/testutil"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSave(t *testing.T) {
	dir, files := testutil.Dir(t)

	m, err := Save(files, pngHeader)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if m.ContentType != "image/png" || !strings.HasSuffix(m.Filename, ".png") {
		t.Errorf("stored = %+v", m)
	}
	if m.URL != URLPrefix+m.Filename {
		t.Errorf("url = %q", m.URL)
	}
	data, err := os.ReadFile(filepath.Join(dir, m.Filename))
	if err != nil || string(data) != string(pngHeader) {
		t.Errorf("file on disk = %q, %v", data, err)
	}
}

func TestSave_RejectsUnsupported(t *testing.T) {
	_, files := testutil.Dir(t)
	_, err := Save(files, []byte("#!/bin/sh\nrm -rf /\n"))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestDecodeDataURI(t *testing.T) {
	enc := base64.StdEncoding.EncodeToString(pngHeader)

	data, err := DecodeDataURI("data:image/png;base64," + enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(data) != string(pngHeader) {
		t.Error("content mismatch")
	}

	cases := map[string]string{
		"no comma":      "data:image/png;base64",
		"not base64":    "data:image/png," + enc,
		"wrong type":    "data:image/jpeg;base64," + enc,
		"unsupported":   "data:text/html;base64," + enc,
		"missing data:": "image/png;base64," + enc,
	}
	for name, uri := range cases {
		if _, err := DecodeDataURI(uri); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSafeName(t *testing.T) {
	for _, bad := range []string{"", "../x.png", "a/b.png", `a\b.png`, ".hidden"} {
		if _, err := SafeName(bad); err == nil {
			t.Errorf("SafeName(%q) accepted", bad)
		}
	}
	if got, err := SafeName("photo.jpg"); err != nil || got != "photo.jpg" {
		t.Errorf("SafeName(photo.jpg) = %q, %v", got, err)
	}
}

package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/testutil"
	"github.com/starford/craftfolder/internal/transfer"
)

// fakeImporter accepts any payload starting with '[' and counts calls.
type fakeImporter struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeImporter) Import(_ context.Context, raw []byte, mode string) (transfer.ImportResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, string(raw))
	f.mu.Unlock()
	if len(raw) == 0 || raw[0] != '[' {
		return transfer.ImportResult{}, apperr.Invalidf("not a project list")
	}
	return transfer.ImportResult{Mode: mode, Count: 1}, nil
}

func (f *fakeImporter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestScan_ExistingFiles(t *testing.T) {
	dir, files := testutil.Dir(t)
	_ = os.WriteFile(filepath.Join(dir, "good.json"), []byte(`[]`), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`nope`), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`[]`), 0o644)

	imp := &fakeImporter{}
	var errs []error
	Scan(context.Background(), files, imp, testutil.Logger(), func(_ string, _ transfer.ImportResult, err error) {
		errs = append(errs, err)
	})

	if imp.count() != 2 {
		t.Fatalf("imports = %d, want 2", imp.count())
	}
	if !exists(filepath.Join(dir, ProcessedDir, "good.json")) {
		t.Error("good.json not moved to processed/")
	}
	if !exists(filepath.Join(dir, FailedDir, "bad.json")) {
		t.Error("bad.json not moved to failed/")
	}
	if !exists(filepath.Join(dir, "notes.txt")) {
		t.Error("non-json file should be left alone")
	}
	if len(errs) != 2 || !errors.Is(errs[0], apperr.ErrValidation) || errs[1] != nil {
		t.Errorf("callback errors = %v", errs)
	}
}

func TestWatch_NewFileImported(t *testing.T) {
	dir, files := testutil.Dir(t)
	imp := &fakeImporter{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var names []string
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, files, imp, testutil.Logger(), func(name string, _ transfer.ImportResult, _ error) {
			mu.Lock()
			names = append(names, name)
			mu.Unlock()
		})
	}()

	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(dir, "drop.json"), []byte(`[{"title":"Tea Cosy"}]`), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return exists(filepath.Join(dir, ProcessedDir, "drop.json"))
	}, "dropped file not imported")

	mu.Lock()
	if len(names) != 1 || names[0] != "drop.json" {
		t.Errorf("callback names = %v", names)
	}
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watch did not stop after cancel")
	}
}

func TestWatch_IgnoresHiddenFiles(t *testing.T) {
	dir, files := testutil.Dir(t)
	imp := &fakeImporter{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, files, imp, testutil.Logger(), nil)

	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(dir, ".partial.json"), []byte(`[]`), 0o644)
	time.Sleep(2 * debounce)

	if imp.count() != 0 {
		t.Errorf("hidden file imported %d times", imp.count())
	}
}

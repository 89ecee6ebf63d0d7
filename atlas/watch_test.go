package atlas

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsCatalogWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if changed, err := w.Poll(); changed || err != nil {
		t.Fatalf("expected quiet watcher, got changed=%v err=%v", changed, err)
	}

	if err := os.WriteFile(filepath.Join(dir, CatalogFile), []byte("characters: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		changed, err := w.Poll()
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if changed {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected a change notification for %s", CatalogFile)
}

func TestIsCatalogFile(t *testing.T) {
	cases := map[string]bool{
		"characters.yaml":  true,
		"dir/extra.YML":    true,
		"satyr/sheet.png":  false,
		"characters.yaml~": false,
	}
	for path, want := range cases {
		if got := isCatalogFile(path); got != want {
			t.Fatalf("isCatalogFile(%q): expected %v, got %v", path, want, got)
		}
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

package files

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirFindsDownloadedCopy(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "ep-1.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := NewDir(root)
	if got := d.FileURL("ep-1"); got != path {
		t.Errorf("FileURL = %q, want %q", got, path)
	}
	if got := d.FileURL("ep-2"); got != "" {
		t.Errorf("FileURL for missing post = %q, want empty", got)
	}
}

func TestDirPrefersAudioExtensions(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"ep-1.mp4", "ep-1.mp3"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	d := NewDir(root)
	if got := d.FileURL("ep-1"); filepath.Ext(got) != ".mp3" {
		t.Errorf("FileURL = %q, want the .mp3 copy", got)
	}
}

func TestNoneNeverResolves(t *testing.T) {
	if got := (None{}).FileURL("ep-1"); got != "" {
		t.Errorf("None.FileURL = %q, want empty", got)
	}
}

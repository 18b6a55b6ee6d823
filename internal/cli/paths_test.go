package cli

import (
	"io"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{"default", "", filepath.Join(home, ".cache", appName)},
		{"xdg", "/tmp/custom-cache", filepath.Join("/tmp/custom-cache", appName)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			dir, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if dir != tt.want {
				t.Errorf("cacheDir() = %q, want %q", dir, tt.want)
			}
		})
	}
}

func TestPreviewCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	c := New(io.Discard, LogInfo)

	dir, err := c.previewCacheDir()
	if err != nil || dir != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("previewCacheDir() = %q, %v", dir, err)
	}

	c.cfg.Preview.CacheDir = "/srv/previews"
	if dir, _ := c.previewCacheDir(); dir != "/srv/previews" {
		t.Errorf("previewCacheDir() = %q, want configured dir", dir)
	}
}

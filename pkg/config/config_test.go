package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/orbitboard/pkg/engine"
	orberrors "github.com/matzehuels/orbitboard/pkg/errors"
	"github.com/matzehuels/orbitboard/pkg/storage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultMatchesComponents(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}

	got := cfg.Engine()
	want := engine.DefaultOptions()
	if got.Collision != want.Collision {
		t.Errorf("Collision = %+v, want %+v", got.Collision, want.Collision)
	}
	if got.Momentum != want.Momentum {
		t.Errorf("Momentum = %+v, want %+v", got.Momentum, want.Momentum)
	}
	if got.Burst != want.Burst {
		t.Errorf("Burst = %+v, want %+v", got.Burst, want.Burst)
	}
	if got.Viewport != want.Viewport {
		t.Errorf("Viewport = %+v, want %+v", got.Viewport, want.Viewport)
	}
	if got.CorrectionDuration != want.CorrectionDuration || got.CorrectionThreshold != want.CorrectionThreshold {
		t.Errorf("correction = %v/%v", got.CorrectionDuration, got.CorrectionThreshold)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[layout]
orbit_radius = 320
center_single = true

[motion]
correction_duration = "300ms"

[storage]
backend = "memory"

[preview]
cache = "none"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.OrbitRadius != 320 || !cfg.Layout.CenterSingle {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Layout.HubRadius != 36 {
		t.Errorf("unset key lost its default: hub_radius = %v", cfg.Layout.HubRadius)
	}
	if cfg.Motion.CorrectionDuration != 300*time.Millisecond {
		t.Errorf("CorrectionDuration = %v", cfg.Motion.CorrectionDuration)
	}
	if cfg.Storage.Backend != storage.BackendMemory || cfg.Preview.Cache != CacheNone {
		t.Errorf("Storage = %+v Preview = %+v", cfg.Storage, cfg.Preview)
	}
	if e := cfg.Engine(); e.Burst.Radius != 250 || !e.Burst.CenterSingle || cfg.Params().Radius() != 320 {
		t.Errorf("Engine().Burst = %+v", e.Burst)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", `[layout`, "read config"},
		{"unknown key", "[layout]\norbit = 3", "unknown config key"},
		{"negative radius", "[layout]\norbit_radius = -1", "layout.orbit_radius"},
		{"friction", "[motion]\nfriction = 1.0", "motion.friction"},
		{"zoom order", "[viewport]\nmin_zoom = 2.0", "min_zoom"},
		{"backend", "[storage]\nbackend = \"etcd\"", "storage.backend"},
		{"cache", "[preview]\ncache = \"memcached\"", "preview.cache"},
		{"iterations", "[layout]\nmax_iterations = 0", "max_iterations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !orberrors.Is(err, orberrors.ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want INVALID_CONFIG", orberrors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") without a file = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() of a missing explicit path should fail")
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "orbitboard", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestStringRoundTrip(t *testing.T) {
	out := Default().String()
	if !strings.Contains(out, "[layout]") || !strings.Contains(out, "orbit_radius = 280.0") {
		t.Errorf("String() =\n%s", out)
	}
	cfg, err := Load(writeConfig(t, out))
	if err != nil {
		t.Fatalf("Load(String()): %v", err)
	}
	if cfg.Engine().Momentum != Default().Engine().Momentum {
		t.Error("round trip changed momentum settings")
	}
}

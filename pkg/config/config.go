// Package config loads orbitboard settings from TOML.
//
// Every section is optional. A file only needs the keys it changes; the rest
// keep the values from [Default]:
//
//	[layout]
//	orbit_radius = 320
//
//	[motion]
//	slide_threshold = 20
//
//	[storage]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
// Durations are written as Go duration strings ("220ms", "24h").
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/orbitboard/pkg/collision"
	"github.com/matzehuels/orbitboard/pkg/engine"
	orberrors "github.com/matzehuels/orbitboard/pkg/errors"
	"github.com/matzehuels/orbitboard/pkg/geom"
	"github.com/matzehuels/orbitboard/pkg/motion"
	"github.com/matzehuels/orbitboard/pkg/orbit"
	"github.com/matzehuels/orbitboard/pkg/preview"
	"github.com/matzehuels/orbitboard/pkg/storage"
	"github.com/matzehuels/orbitboard/pkg/viewport"
)

// Config is the full settings tree.
type Config struct {
	Layout   Layout         `toml:"layout"`
	Motion   Motion         `toml:"motion"`
	Viewport Viewport       `toml:"viewport"`
	Server   Server         `toml:"server"`
	Storage  storage.Config `toml:"storage"`
	Preview  Preview        `toml:"preview"`
}

// Layout holds ring and solver geometry, in board pixels.
type Layout struct {
	HubRadius      float64 `toml:"hub_radius"`
	MinGap         float64 `toml:"min_gap"`
	OrbitRadius    float64 `toml:"orbit_radius"`
	BurstRadius    float64 `toml:"burst_radius"`
	CenterSingle   bool    `toml:"center_single"`
	ContentPadding float64 `toml:"content_padding"`
	CollisionGap   float64 `toml:"collision_gap"`
	MaxIterations  int     `toml:"max_iterations"`
}

// Motion holds momentum and correction tuning.
type Motion struct {
	SlideThreshold      float64       `toml:"slide_threshold"`
	Damping             float64       `toml:"damping"`
	Friction            float64       `toml:"friction"`
	VelocityMin         float64       `toml:"velocity_min"`
	Frame               time.Duration `toml:"frame"`
	MinSampleInterval   time.Duration `toml:"min_sample_interval"`
	CorrectionDuration  time.Duration `toml:"correction_duration"`
	CorrectionThreshold float64       `toml:"correction_threshold"`
}

// Viewport holds camera limits.
type Viewport struct {
	MinZoom        float64 `toml:"min_zoom"`
	MaxZoom        float64 `toml:"max_zoom"`
	PanMargin      float64 `toml:"pan_margin"`
	SnapDistance   float64 `toml:"snap_distance"`
	FallbackWidth  float64 `toml:"fallback_width"`
	FallbackHeight float64 `toml:"fallback_height"`
}

// Server holds HTTP settings.
type Server struct {
	Addr           string        `toml:"addr"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	ReadTimeout    time.Duration `toml:"read_timeout"`
	MaxBodyBytes   int64         `toml:"max_body_bytes"`
}

// Preview holds bookmark preview settings.
type Preview struct {
	// Cache is "file", "redis" or "none". The redis cache connects with the
	// [storage] redis settings.
	Cache    string        `toml:"cache"`
	CacheDir string        `toml:"cache_dir"`
	TTL      time.Duration `toml:"ttl"`
	Timeout  time.Duration `toml:"timeout"`
	Attempts int           `toml:"attempts"`
}

// Preview cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Default returns the stock settings.
func Default() Config {
	p := orbit.DefaultParams()
	co := collision.DefaultOptions()
	m := motion.DefaultMomentum()
	v := viewport.DefaultOptions()
	return Config{
		Layout: Layout{
			HubRadius:      p.HubRadius,
			MinGap:         p.MinGap,
			OrbitRadius:    p.OrbitRadius,
			BurstRadius:    p.BurstRadius,
			ContentPadding: p.Padding,
			CollisionGap:   co.Gap.W,
			MaxIterations:  co.MaxIterations,
		},
		Motion: Motion{
			SlideThreshold:      m.SpeedThreshold,
			Damping:             m.Damping,
			Friction:            m.Friction,
			VelocityMin:         m.VelocityMin,
			Frame:               m.Frame,
			MinSampleInterval:   m.MinDt,
			CorrectionDuration:  motion.DefaultCorrectionDuration,
			CorrectionThreshold: motion.DefaultCorrectionThreshold,
		},
		Viewport: Viewport{
			MinZoom:        v.MinZoom,
			MaxZoom:        v.MaxZoom,
			PanMargin:      v.PanMargin,
			SnapDistance:   v.SnapDistance,
			FallbackWidth:  v.Fallback.W,
			FallbackHeight: v.Fallback.H,
		},
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: 30 * time.Second,
			ReadTimeout:    10 * time.Second,
			MaxBodyBytes:   4 << 20,
		},
		Storage: storage.Config{Backend: storage.BackendFile},
		Preview: Preview{
			Cache:    CacheFile,
			TTL:      preview.DefaultTTL,
			Timeout:  8 * time.Second,
			Attempts: preview.DefaultAttempts,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/orbitboard/config.toml, falling back
// to the platform config directory.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		d, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	return filepath.Join(dir, "orbitboard", "config.toml"), nil
}

// Load decodes path over [Default] and validates the result. An empty path
// tries [DefaultPath] and returns the defaults when that file is absent.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return cfg, orberrors.Wrap(orberrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return cfg, orberrors.New(orberrors.ErrCodeInvalidConfig, "unknown config key %q in %s", undec[0].String(), path)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings no component can work with.
func (c Config) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"layout.hub_radius", c.Layout.HubRadius},
		{"layout.orbit_radius", c.Layout.OrbitRadius},
		{"layout.burst_radius", c.Layout.BurstRadius},
		{"motion.friction", c.Motion.Friction},
		{"motion.velocity_min", c.Motion.VelocityMin},
		{"viewport.min_zoom", c.Viewport.MinZoom},
		{"viewport.max_zoom", c.Viewport.MaxZoom},
		{"viewport.fallback_width", c.Viewport.FallbackWidth},
		{"viewport.fallback_height", c.Viewport.FallbackHeight},
	}
	for _, ch := range checks {
		if err := orberrors.ValidatePositive(ch.name, ch.v); err != nil {
			return invalid(err)
		}
	}
	for _, ch := range []struct {
		name string
		v    float64
	}{
		{"layout.min_gap", c.Layout.MinGap},
		{"layout.collision_gap", c.Layout.CollisionGap},
		{"layout.content_padding", c.Layout.ContentPadding},
		{"motion.slide_threshold", c.Motion.SlideThreshold},
		{"motion.damping", c.Motion.Damping},
		{"motion.correction_threshold", c.Motion.CorrectionThreshold},
		{"viewport.pan_margin", c.Viewport.PanMargin},
		{"viewport.snap_distance", c.Viewport.SnapDistance},
	} {
		if err := orberrors.ValidateFinite(ch.name, ch.v); err != nil {
			return invalid(err)
		}
		if ch.v < 0 {
			return orberrors.New(orberrors.ErrCodeInvalidConfig, "%s must not be negative, got %v", ch.name, ch.v)
		}
	}

	switch {
	case c.Layout.MaxIterations < 1:
		return orberrors.New(orberrors.ErrCodeInvalidConfig, "layout.max_iterations must be at least 1, got %d", c.Layout.MaxIterations)
	case c.Motion.Friction >= 1:
		return orberrors.New(orberrors.ErrCodeInvalidConfig, "motion.friction must be below 1 for slides to stop, got %v", c.Motion.Friction)
	case c.Motion.Frame <= 0:
		return orberrors.New(orberrors.ErrCodeInvalidConfig, "motion.frame must be positive")
	case c.Motion.CorrectionDuration <= 0:
		return orberrors.New(orberrors.ErrCodeInvalidConfig, "motion.correction_duration must be positive")
	case c.Viewport.MinZoom > c.Viewport.MaxZoom:
		return orberrors.New(orberrors.ErrCodeInvalidConfig, "viewport.min_zoom %v exceeds max_zoom %v", c.Viewport.MinZoom, c.Viewport.MaxZoom)
	case c.Server.Addr == "":
		return orberrors.New(orberrors.ErrCodeInvalidConfig, "server.addr must not be empty")
	case c.Preview.Attempts < 1:
		return orberrors.New(orberrors.ErrCodeInvalidConfig, "preview.attempts must be at least 1, got %d", c.Preview.Attempts)
	}

	switch c.Storage.Backend {
	case "", storage.BackendFile, storage.BackendMemory, storage.BackendRedis, storage.BackendMongo:
	default:
		return orberrors.New(orberrors.ErrCodeInvalidConfig, "unknown storage.backend %q", c.Storage.Backend)
	}
	switch c.Preview.Cache {
	case "", CacheFile, CacheRedis, CacheNone:
	default:
		return orberrors.New(orberrors.ErrCodeInvalidConfig, "unknown preview.cache %q", c.Preview.Cache)
	}
	return nil
}

func invalid(err error) error {
	return orberrors.Wrap(orberrors.ErrCodeInvalidConfig, err, "%s", orberrors.UserMessage(err))
}

// =============================================================================
// Component options
// =============================================================================

// Params returns the ring geometry.
func (c Config) Params() orbit.Params {
	p := orbit.DefaultParams()
	p.HubRadius = c.Layout.HubRadius
	p.MinGap = c.Layout.MinGap
	p.OrbitRadius = c.Layout.OrbitRadius
	p.BurstRadius = c.Layout.BurstRadius
	p.Padding = c.Layout.ContentPadding
	return p
}

// Engine returns engine options. The logger and sizer are left for the
// caller.
func (c Config) Engine() engine.Options {
	p := c.Params()

	co := collision.OptionsFrom(p)
	co.MaxIterations = c.Layout.MaxIterations
	co.Gap = geom.Size{W: c.Layout.CollisionGap, H: c.Layout.CollisionGap}

	vo := viewport.DefaultOptions()
	vo.MinZoom = c.Viewport.MinZoom
	vo.MaxZoom = c.Viewport.MaxZoom
	vo.PanMargin = c.Viewport.PanMargin
	vo.SnapDistance = c.Viewport.SnapDistance
	vo.Fallback = geom.Size{W: c.Viewport.FallbackWidth, H: c.Viewport.FallbackHeight}
	vo.Content = p.ContentBounds()

	return engine.Options{
		Collision: co,
		Momentum: motion.MomentumOptions{
			SpeedThreshold: c.Motion.SlideThreshold,
			Damping:        c.Motion.Damping,
			Friction:       c.Motion.Friction,
			VelocityMin:    c.Motion.VelocityMin,
			Frame:          c.Motion.Frame,
			MinDt:          c.Motion.MinSampleInterval,
		},
		Burst:               orbit.BurstOptions{Radius: p.BurstRadius, CenterSingle: c.Layout.CenterSingle},
		Viewport:            vo,
		CorrectionDuration:  c.Motion.CorrectionDuration,
		CorrectionThreshold: c.Motion.CorrectionThreshold,
	}
}

// String renders c as TOML.
func (c Config) String() string {
	b, err := toml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(b)
}

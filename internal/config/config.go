// Package config loads the YAML settings shared by the viewer and the
// headless report.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

// EnvConfigPath names the config file when Load is given no path.
const EnvConfigPath = "MAPVIEW_CONFIG"

// EnvMetricsAddr overrides an empty metrics.listen.
const EnvMetricsAddr = "MAPVIEW_METRICS_ADDR"

const defaultMetricsAddr = ":2112"

type Config struct {
	Window  WindowConfig  `yaml:"window"`
	View    ViewConfig    `yaml:"view"`
	Shader  ShaderConfig  `yaml:"shader"`
	World   WorldConfig   `yaml:"world"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type ViewConfig struct {
	VisibleWidth         int     `yaml:"visible_width"`
	VisibleHeight        int     `yaml:"visible_height"`
	RenderScale          int     `yaml:"render_scale"`
	AutoViewMode         bool    `yaml:"auto_view_mode"`
	ViewMode             string  `yaml:"view_mode"`
	DrawLights           bool    `yaml:"draw_lights"`
	ShadowFloorIntensity float64 `yaml:"shadow_floor_intensity"`
	MinimumAmbientLight  float64 `yaml:"minimum_ambient_light"`
	DrawNames            bool    `yaml:"draw_names"`
	DrawHealthBars       bool    `yaml:"draw_health_bars"`
	DrawManaBar          bool    `yaml:"draw_mana_bar"`
	DrawTexts            bool    `yaml:"draw_texts"`
	HighlightTarget      bool    `yaml:"highlight_target"`
	Crosshair            bool    `yaml:"crosshair"`
	AntiAliasing         bool    `yaml:"anti_aliasing"`
}

type ShaderConfig struct {
	Name      string `yaml:"name"`
	FadeInMS  int    `yaml:"fade_in_ms"`
	FadeOutMS int    `yaml:"fade_out_ms"`
}

type WorldConfig struct {
	Seed   int64 `yaml:"seed"`
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the settings used when no file is configured.
func Default() *Config {
	return &Config{
		Window: WindowConfig{Width: 1280, Height: 800, Title: "mapview"},
		View: ViewConfig{
			VisibleWidth:         15,
			VisibleHeight:        11,
			RenderScale:          100,
			ViewMode:             mapview.NearView.String(),
			DrawLights:           true,
			ShadowFloorIntensity: 0.3,
			MinimumAmbientLight:  0.1,
			DrawNames:            true,
			DrawHealthBars:       true,
			DrawManaBar:          true,
			DrawTexts:            true,
			HighlightTarget:      true,
			Crosshair:            true,
		},
		Shader: ShaderConfig{Name: "plain", FadeInMS: 500, FadeOutMS: 500},
		World:  WorldConfig{Seed: 1, Width: 96, Height: 96},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over Default. An empty path falls back
// to $MAPVIEW_CONFIG, and to Default alone when that is unset too.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the viewer cannot start with.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size %dx%d must be positive", c.World.Width, c.World.Height)
	}
	if _, err := c.View.Mode(); err != nil {
		return err
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Shader.FadeInMS < 0 || c.Shader.FadeOutMS < 0 {
		return fmt.Errorf("shader fades must not be negative")
	}
	return nil
}

// Mode parses view_mode.
func (v ViewConfig) Mode() (mapview.ViewMode, error) {
	m, ok := mapview.ParseViewMode(strings.ToLower(v.ViewMode))
	if !ok {
		return mapview.NearView, fmt.Errorf("unknown view mode %q", v.ViewMode)
	}
	return m, nil
}

// Apply pushes the view settings onto v. crosshair is only set when the
// crosshair is enabled; the visible dimension goes last so a rejected size
// leaves the rest applied.
func (c ViewConfig) Apply(v *mapview.MapView, crosshair mapview.Texture) {
	if mode, err := c.Mode(); err == nil {
		v.SetViewMode(mode)
	}
	v.SetAutoViewMode(c.AutoViewMode)
	v.SetRenderScale(c.RenderScale)
	v.SetDrawLights(c.DrawLights)
	v.SetShadowFloorIntensity(c.ShadowFloorIntensity)
	v.SetMinimumAmbientLight(c.MinimumAmbientLight)
	v.SetDrawNames(c.DrawNames)
	v.SetDrawHealthBars(c.DrawHealthBars)
	v.SetDrawManaBar(c.DrawManaBar)
	v.SetDrawTexts(c.DrawTexts)
	v.SetDrawHighlightTarget(c.HighlightTarget)
	v.SetAntiAliasing(c.AntiAliasing)
	if c.Crosshair {
		v.SetCrosshairTexture(crosshair)
	} else {
		v.SetCrosshairTexture(nil)
	}
	v.SetVisibleDimension(geom.Sz(c.VisibleWidth, c.VisibleHeight))
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

// GetListen returns the metrics address with priority config -> env -> default.
func (m *MetricsConfig) GetListen() string {
	return getWithEnvFallback(m.Listen, EnvMetricsAddr, defaultMetricsAddr)
}

func getWithEnvFallback(value, envVar, def string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envVar); env != "" {
		return env
	}
	return def
}

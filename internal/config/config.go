package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"skinpack-studio/internal/skin"
)

const (
	DefaultListenAddr  = "127.0.0.1:8080"
	DefaultSessionTTL  = 24 * time.Hour
	DefaultCompression = 6
)

// Config holds all configurable paths, render and server settings.
type Config struct {
	// Paths
	OutputDir  string `json:"output_dir"`
	PreviewDir string `json:"preview_dir"`

	// Render settings
	RenderSize  int `json:"render_size"`
	Supersample int `json:"supersample"`
	Workers     int `json:"workers"`

	// Studio server
	ListenAddr    string   `json:"listen_addr"`
	RedisAddr     string   `json:"redis_addr"`
	RedisPassword string   `json:"redis_password"`
	RedisDB       int      `json:"redis_db"`
	SessionTTL    Duration `json:"session_ttl"`

	// Pack defaults
	CompressionLevel int    `json:"compression_level"`
	Language         string `json:"language"`
	Geometry         string `json:"geometry"`

	LogLevel string `json:"log_level"`
}

// Duration reads "90m"-style strings or plain seconds from JSON.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}
	var secs int64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("duration: %s", b)
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadEnv loads .env style files into the process environment.
// Missing files are ignored; existing variables are not overwritten.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: env %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays environment values onto c. Pass os.Getenv in
// production.
func (c *Config) ApplyEnv(getenv func(string) string) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	num := func(dst *int, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str(&c.OutputDir, "SKINPACK_OUTPUT_DIR")
	str(&c.PreviewDir, "SKINPACK_PREVIEW_DIR")
	num(&c.RenderSize, "SKINPACK_RENDER_SIZE")
	num(&c.Workers, "SKINPACK_WORKERS")
	str(&c.ListenAddr, "SKINPACK_LISTEN")
	if c.ListenAddr == "" {
		if port := strings.TrimSpace(getenv("PORT")); port != "" {
			c.ListenAddr = ":" + port
		}
	}
	str(&c.RedisAddr, "REDIS_ADDR")
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	num(&c.RedisDB, "REDIS_DB")
	if v := strings.TrimSpace(getenv("SKINPACK_SESSION_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SessionTTL = Duration(d)
		}
	}
	num(&c.CompressionLevel, "SKINPACK_COMPRESSION")
	str(&c.Language, "SKINPACK_LANGUAGE")
	str(&c.Geometry, "SKINPACK_GEOMETRY")
	str(&c.LogLevel, "SKINPACK_LOG_LEVEL")
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file and environment
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.PreviewDir != "" {
		c.PreviewDir = flags.PreviewDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.ListenAddr != "" {
		c.ListenAddr = flags.ListenAddr
	}
	if flags.Language != "" {
		c.Language = flags.Language
	}
	if flags.Geometry != "" {
		c.Geometry = flags.Geometry
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.PreviewDir == "" {
		c.PreviewDir = filepath.Join(c.OutputDir, "previews")
	}

	if c.RenderSize <= 0 {
		c.RenderSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}

	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = Duration(DefaultSessionTTL)
	}

	// 0 selects the default; stored archives are not offered.
	if c.CompressionLevel == 0 {
		c.CompressionLevel = DefaultCompression
	}
	if c.Language == "" {
		c.Language = skin.DefaultLanguage
	}
	if c.Geometry == "" {
		c.Geometry = skin.GeometrySlim
	} else if g, err := skin.ParseGeometry(c.Geometry); err == nil {
		c.Geometry = g
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports settings Resolve cannot repair.
func (c Config) Validate() error {
	if !skin.IsLanguage(c.Language) {
		return fmt.Errorf("config: unknown language %q", c.Language)
	}
	if !skin.IsGeometry(c.Geometry) {
		return fmt.Errorf("config: unknown geometry %q", c.Geometry)
	}
	return nil
}

// TTL returns the session lifetime.
func (c Config) TTL() time.Duration {
	return time.Duration(c.SessionTTL)
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir  string
	PreviewDir string
	Workers    int
	ListenAddr string
	Language   string
	Geometry   string
	LogLevel   string
}

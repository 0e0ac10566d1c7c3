// Package levelconfig loads optional runtime tuning for the library: the
// default region compression, the LZ4 opt-in, an auto-compaction ratio
// setting, and the diagnostic log level. None of it is required — every package in
// this module works from explicit constructor arguments without it; this
// is only for hosts that want one shared config file or environment
// prefix instead of wiring each value through by hand.
//
// Grounded on nickheyer-discopanel/internal/config/config.go's
// viper.New/SetDefault/AutomaticEnv/Unmarshal shape, scaled down to this
// module's much smaller surface.
package levelconfig

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Amulet-Team/Amulet-Level/anvil"
	"github.com/Amulet-Team/Amulet-Level/internal/levellog"
)

// Config is the library's optional tunable surface.
type Config struct {
	Anvil   AnvilConfig   `mapstructure:"anvil"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AnvilConfig tunes the anvil package's region I/O.
type AnvilConfig struct {
	// DefaultCompression is one of "gzip", "zlib", "uncompressed", "lz4".
	DefaultCompression string `mapstructure:"default_compression"`
	// AutoCompactFreeSectorRatio is a free-to-total sector ratio, loaded and
	// validated to lie within [0, 1] (default 0). Nothing in this module
	// reads it: no code triggers Region.Compact from it.
	AutoCompactFreeSectorRatio float64 `mapstructure:"auto_compact_free_sector_ratio"`
	// AllowLZ4 opts into reading and writing compression id 4 (LZ4), which
	// a Region refuses by default. Defaults to false.
	AllowLZ4 bool `mapstructure:"allow_lz4"`
}

// LoggingConfig holds the configured log level; ResolvedLevel maps it to a
// levellog.Level. Load does not apply it to levellog.Default.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
}

// Default returns the library's built-in defaults, used both as the
// config's fallback values and as the starting point Load overlays a file
// and environment variables on top of.
func Default() Config {
	return Config{
		Anvil: AnvilConfig{
			DefaultCompression:         "zlib",
			AutoCompactFreeSectorRatio: 0,
			AllowLZ4:                   false,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads an optional config file named "amulet-level.yaml", searching
// configPath (when non-empty) and then the current directory, overlays
// any AMULET_LEVEL_-prefixed environment variables, and falls back to
// Default for anything unset. A missing config file is not an error.
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetConfigName("amulet-level")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")

	def := Default()
	v.SetDefault("anvil.default_compression", def.Anvil.DefaultCompression)
	v.SetDefault("anvil.auto_compact_free_sector_ratio", def.Anvil.AutoCompactFreeSectorRatio)
	v.SetDefault("anvil.allow_lz4", def.Anvil.AllowLZ4)
	v.SetDefault("logging.level", def.Logging.Level)

	v.SetEnvPrefix("AMULET_LEVEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("levelconfig: read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("levelconfig: unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return Config{}, fmt.Errorf("levelconfig: %w", err)
	}
	return cfg, nil
}

// CompressionID resolves the configured default compression to the tag
// anvil.Region.SetChunk expects.
func (a AnvilConfig) CompressionID() (anvil.CompressionID, error) {
	switch a.DefaultCompression {
	case "gzip":
		return anvil.CompressionGZip, nil
	case "zlib":
		return anvil.CompressionZlib, nil
	case "uncompressed":
		return anvil.CompressionUncompressed, nil
	case "lz4":
		return anvil.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("anvil.default_compression: unknown value %q", a.DefaultCompression)
	}
}

// ResolvedLevel resolves the configured log level to levellog's Level type.
func (l LoggingConfig) ResolvedLevel() levellog.Level {
	switch l.Level {
	case "debug":
		return levellog.DebugLevel
	case "warn":
		return levellog.WarnLevel
	case "error":
		return levellog.ErrorLevel
	default:
		return levellog.InfoLevel
	}
}

func validate(cfg *Config) error {
	switch cfg.Anvil.DefaultCompression {
	case "gzip", "zlib", "uncompressed", "lz4":
	default:
		return fmt.Errorf("anvil.default_compression: unknown value %q", cfg.Anvil.DefaultCompression)
	}
	if cfg.Anvil.AutoCompactFreeSectorRatio < 0 || cfg.Anvil.AutoCompactFreeSectorRatio > 1 {
		return fmt.Errorf("anvil.auto_compact_free_sector_ratio: must be within [0, 1]")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown value %q", cfg.Logging.Level)
	}
	return nil
}

// Package config loads the profile, piece value and visualization
// documents and the server settings with viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/bonjohen/chess-metric-analyzer/internal/profile"
)

var ErrConfigLoad = errors.New("config load failed")

func read(path string) (*viper.Viper, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no path", ErrConfigLoad)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigLoad, path, err)
	}
	return v, nil
}

// LoadProfiles reads a document of the form
//
//	profiles: [{name, description, weights: {material, mobility, attack, defense}}]
//	default: name
func LoadProfiles(path string) (profile.Document, error) {
	v, err := read(path)
	if err != nil {
		return profile.Document{}, err
	}
	var doc profile.Document
	if err := v.Unmarshal(&doc); err != nil {
		return profile.Document{}, fmt.Errorf("%w: %s: %v", ErrConfigLoad, path, err)
	}
	for _, p := range doc.Profiles {
		if err := p.Validate(); err != nil {
			return profile.Document{}, fmt.Errorf("%w: profile %q: %v", ErrConfigLoad, p.Name, err)
		}
	}
	if len(doc.Profiles) == 0 {
		return profile.Document{}, fmt.Errorf("%w: %s: no profiles", ErrConfigLoad, path)
	}
	return doc, nil
}

// LoadPieceValues reads pawn/knight/bishop/rook/queen/king values. Missing
// fields keep their defaults.
func LoadPieceValues(path string) (profile.PieceValues, error) {
	v, err := read(path)
	if err != nil {
		return profile.PieceValues{}, err
	}
	pv := profile.DefaultPieceValues()
	if err := v.Unmarshal(&pv); err != nil {
		return profile.PieceValues{}, fmt.Errorf("%w: %s: %v", ErrConfigLoad, path, err)
	}
	if err := pv.Validate(); err != nil {
		return profile.PieceValues{}, fmt.Errorf("%w: %s: %v", ErrConfigLoad, path, err)
	}
	pv.King = 0
	return pv, nil
}

// LoadVisualization reads arrow and square tuning constants. Missing
// fields keep their defaults.
func LoadVisualization(path string) (profile.Visualization, error) {
	v, err := read(path)
	if err != nil {
		return profile.Visualization{}, err
	}
	viz := profile.DefaultVisualization()
	if err := v.Unmarshal(&viz); err != nil {
		return profile.Visualization{}, fmt.Errorf("%w: %s: %v", ErrConfigLoad, path, err)
	}
	if err := viz.Validate(); err != nil {
		return profile.Visualization{}, fmt.Errorf("%w: %s: %v", ErrConfigLoad, path, err)
	}
	return viz, nil
}

// Server holds the process settings
type Server struct {
	Listen          string `mapstructure:"listen"`
	Dev             bool   `mapstructure:"dev"`
	StorageBackend  string `mapstructure:"storage_backend"`
	StoragePath     string `mapstructure:"storage_path"`
	RedisAddr       string `mapstructure:"redis_addr"`
	RedisPassword   string `mapstructure:"redis_password"`
	RedisDB         int    `mapstructure:"redis_db"`
	EnginePath      string `mapstructure:"engine_path"`
	ProfilesPath    string `mapstructure:"profiles_path"`
	PiecesPath      string `mapstructure:"pieces_path"`
	VisualPath      string `mapstructure:"visualization_path"`
	RateLimit       int    `mapstructure:"rate_limit"`
	AnalysisDepth   int    `mapstructure:"analysis_depth"`
	AnalysisTickMs  int    `mapstructure:"analysis_tick_ms"`
	SessionTTLHours int    `mapstructure:"session_ttl_hours"`
}

func serverDefaults(v *viper.Viper) {
	v.SetDefault("listen", "localhost:8080")
	v.SetDefault("dev", false)
	v.SetDefault("storage_backend", "none")
	v.SetDefault("storage_path", "viz.db")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("engine_path", "")
	v.SetDefault("profiles_path", "")
	v.SetDefault("pieces_path", "")
	v.SetDefault("visualization_path", "")
	v.SetDefault("rate_limit", 10)
	v.SetDefault("analysis_depth", 7)
	v.SetDefault("analysis_tick_ms", 500)
	v.SetDefault("session_ttl_hours", 24)
}

// LoadServer reads server settings from an optional file, then applies
// VIZ_* environment overrides (VIZ_LISTEN, VIZ_REDIS_ADDR, ...)
func LoadServer(path string) (*Server, error) {
	v := viper.New()
	serverDefaults(v)
	v.SetEnvPrefix("viz")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfigLoad, path, err)
		}
	}

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}

	switch cfg.StorageBackend {
	case "none", "sqlite", "redis":
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", ErrConfigLoad, cfg.StorageBackend)
	}
	if cfg.AnalysisDepth < 1 {
		cfg.AnalysisDepth = 1
	}
	if cfg.AnalysisTickMs < 1 {
		cfg.AnalysisTickMs = 500
	}
	return &cfg, nil
}

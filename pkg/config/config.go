package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/havrydotdev/catclient/pkg/utils"
	"github.com/spf13/viper"
)

const (
	FileName  = "catclient_config.json"
	EnvPrefix = "CATCLIENT"
)

type Config struct {
	JavaPath        string        `json:"java_path" mapstructure:"java_path"`
	Memory          string        `json:"memory" mapstructure:"memory"`
	Username        string        `json:"username" mapstructure:"username"`
	GameDir         string        `json:"game_dir" mapstructure:"game_dir"`
	JvmArgs         string        `json:"jvm_args" mapstructure:"jvm_args"`
	LaunchVersion   string        `json:"launch_version" mapstructure:"launch_version"`
	VerifyDownloads bool          `json:"verify_downloads" mapstructure:"verify_downloads"`
	DownloadTimeout time.Duration `json:"-" mapstructure:"download_timeout"`
	DownloadWorkers int           `json:"download_workers" mapstructure:"download_workers"`
	GracePeriod     time.Duration `json:"-" mapstructure:"grace_period"`
	DiscordPresence bool          `json:"discord_presence" mapstructure:"discord_presence"`
	ManifestURL     string        `json:"manifest_url" mapstructure:"manifest_url"`
}

// New returns a viper instance reading <gameDir>/catclient_config.json with
// CATCLIENT_* environment overrides. Callers may bind flags before Load.
func New(gameDir string) *viper.Viper {
	v := viper.New()

	v.SetConfigFile(Path(gameDir))
	v.SetConfigType("json")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("java_path", utils.DefaultJavaPath)
	v.SetDefault("memory", utils.DefaultMemory)
	v.SetDefault("username", utils.DefaultOfflineName)
	v.SetDefault("game_dir", gameDir)
	v.SetDefault("jvm_args", "")
	v.SetDefault("launch_version", "")
	v.SetDefault("verify_downloads", false)
	v.SetDefault("download_timeout", utils.DefaultDownloadTimeout)
	v.SetDefault("download_workers", utils.DefaultDownloadWorkers)
	v.SetDefault("grace_period", utils.DefaultGracePeriod)
	v.SetDefault("discord_presence", true)
	v.SetDefault("manifest_url", utils.VersionManifestURL)

	return v
}

// Load reads the config file, if any, and decodes the merged settings.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func Path(gameDir string) string {
	return filepath.Join(gameDir, FileName)
}

type persisted Config

// Persist writes cfg back to <GameDir>/catclient_config.json.
func Persist(cfg *Config) error {
	out := struct {
		persisted
		DownloadTimeout string `json:"download_timeout"`
		GracePeriod     string `json:"grace_period"`
	}{
		persisted:       persisted(*cfg),
		DownloadTimeout: cfg.DownloadTimeout.String(),
		GracePeriod:     cfg.GracePeriod.String(),
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.GameDir, os.ModePerm); err != nil {
		return err
	}

	return os.WriteFile(Path(cfg.GameDir), data, 0o644)
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// STTConfig configures the external diarized transcription service.
// The API key is the one required secret; it is deliberately allowed
// to be empty at startup so the service can boot and report the
// configuration error on the first submit instead.
type STTConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Tier           string        `mapstructure:"tier"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type UploadConfig struct {
	MaxBytes   int64    `mapstructure:"max_bytes"`
	Extensions []string `mapstructure:"extensions"`
}

type EditorConfig struct {
	QuietPeriod time.Duration `mapstructure:"quiet_period"`
}

type Settings struct {
	Server ServerConfig `mapstructure:"server"`
	STT    STTConfig    `mapstructure:"stt"`
	Upload UploadConfig `mapstructure:"upload"`
	Editor EditorConfig `mapstructure:"editor"`
	Debug  bool         `mapstructure:"debug"`
}

// Load reads settings from config.yaml (working directory) and the
// DIARIZE_* environment, env taking precedence. A missing config file
// is fine, defaults cover every key.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DIARIZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("debug", false)

	v.SetDefault("stt.api_key", "")
	v.SetDefault("stt.base_url", "https://api.scribe.dev")
	v.SetDefault("stt.tier", "premium")
	v.SetDefault("stt.poll_interval", 2*time.Second)
	v.SetDefault("stt.request_timeout", 30*time.Second)

	// 800 MiB hard ceiling, extension filter advisory only.
	v.SetDefault("upload.max_bytes", int64(800)<<20)
	v.SetDefault("upload.extensions", []string{".mp3", ".mp4", ".wav"})

	v.SetDefault("editor.quiet_period", 500*time.Millisecond)
}

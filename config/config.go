package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "SLX"

	DefaultConfigFile      = "./config.json"
	DefaultDatabaseDriver  = "postgres"
	DefaultDataDir         = "./data"
	DefaultLogLevel        = "info"
	DefaultStatusEndpoint  = "https://api.mcstatus.io/v2/status/bedrock/"
	DefaultStatusInterval  = 10 * time.Second
	DefaultPanelInterval   = time.Minute
	DefaultAIBaseURL       = "https://openrouter.ai/api/v1"
	DefaultAIModel         = "openai/gpt-3.5-turbo"
	DefaultAIRequestsPerM  = 20
	DefaultSpamWindow      = 10 * time.Second
	DefaultSpamThreshold   = 5
	DefaultPasteEndpoint   = "https://api.awau.moe/upload/pomf"
	DefaultPasteResultBase = "https://chito.ge/"
)

type Config struct {
	Token         string `mapstructure:"token"`
	ApplicationID string `mapstructure:"application_id"`
	GuildID       string `mapstructure:"guild_id"`
	LogLevel      string `mapstructure:"log_level"`
	DataDir       string `mapstructure:"data_dir"`

	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Status   StatusConfig   `mapstructure:"status"`
	Grass    GrassConfig    `mapstructure:"grass"`
	AI       AIConfig       `mapstructure:"ai"`
	Spam     SpamConfig     `mapstructure:"spam"`
	Paste    PasteConfig    `mapstructure:"paste"`
}

type DatabaseConfig struct {
	// Driver is either postgres or sqlite
	Driver           string `mapstructure:"driver"`
	ConnectionString string `mapstructure:"connection_string"`
}

// ServerConfig describes the Minecraft server the community plays on.
type ServerConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
}

type StatusConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Endpoint     string        `mapstructure:"endpoint"`
	Interval     time.Duration `mapstructure:"interval"`
	LogChannelID string        `mapstructure:"log_channel_id"`
}

type GrassConfig struct {
	ChannelID       string        `mapstructure:"channel_id"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type AIConfig struct {
	Token          string   `mapstructure:"token"`
	BaseURL        string   `mapstructure:"base_url"`
	Model          string   `mapstructure:"model"`
	RequestsPerMin int      `mapstructure:"requests_per_minute"`
	BlockedPhrases []string `mapstructure:"blocked_phrases"`
}

type SpamConfig struct {
	Window    time.Duration `mapstructure:"window"`
	Threshold int           `mapstructure:"threshold"`
}

type PasteConfig struct {
	Token      string `mapstructure:"token"`
	Endpoint   string `mapstructure:"endpoint"`
	ResultBase string `mapstructure:"result_base"`
}

// Addr is the host:port pair players connect to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%v:%v", s.Address, s.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("token", "")
	v.SetDefault("application_id", "")
	v.SetDefault("guild_id", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("data_dir", DefaultDataDir)

	v.SetDefault("database.driver", DefaultDatabaseDriver)
	v.SetDefault("database.connection_string", "")

	v.SetDefault("server.name", "SlxshyNationCraft")
	v.SetDefault("server.address", "87.106.101.66")
	v.SetDefault("server.port", 6367)

	v.SetDefault("status.enabled", true)
	v.SetDefault("status.endpoint", DefaultStatusEndpoint)
	v.SetDefault("status.interval", DefaultStatusInterval)
	v.SetDefault("status.log_channel_id", "")

	v.SetDefault("grass.channel_id", "")
	v.SetDefault("grass.refresh_interval", DefaultPanelInterval)

	v.SetDefault("ai.token", "")
	v.SetDefault("ai.base_url", DefaultAIBaseURL)
	v.SetDefault("ai.model", DefaultAIModel)
	v.SetDefault("ai.requests_per_minute", DefaultAIRequestsPerM)
	v.SetDefault("ai.blocked_phrases", []string{})

	v.SetDefault("spam.window", DefaultSpamWindow)
	v.SetDefault("spam.threshold", DefaultSpamThreshold)

	v.SetDefault("paste.token", "")
	v.SetDefault("paste.endpoint", DefaultPasteEndpoint)
	v.SetDefault("paste.result_base", DefaultPasteResultBase)
}

// Load reads the config file at path (if it exists), a .env file (if it
// exists), and SLX_* environment variables, in increasing precedence.
func Load(path string, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first setting that prevents the bot from starting.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("token is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.ConnectionString == "" {
		return errors.New("database.connection_string is required")
	}
	if c.Status.Interval <= 0 {
		return errors.New("status.interval must be positive")
	}
	if c.Grass.RefreshInterval <= 0 {
		return errors.New("grass.refresh_interval must be positive")
	}
	return nil
}

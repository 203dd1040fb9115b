package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Hub      HubConfig      `mapstructure:"hub"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	APIAddress     string `mapstructure:"api_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	// Driver is "gorm" (table per registry) or "pq" (single snapshot row).
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN is the key/value connection string understood by lib/pq and pgx.
func (p PostgresConfig) DSN() string {
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, sslMode)
}

// Enabled reports whether a postgres host is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
}

type ArchiveConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type HubConfig struct {
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`
	ChallengeTTL     time.Duration `mapstructure:"challenge_ttl"`
	LeaderboardSize  int           `mapstructure:"leaderboard_size"`
	MailboxSize      int           `mapstructure:"mailbox_size"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

var (
	ErrInvalidLeaderboardSize = errors.New("hub.leaderboard_size must be positive")
	ErrInvalidMailboxSize     = errors.New("hub.mailbox_size must be positive")
	ErrInvalidChallengeTTL    = errors.New("hub.challenge_ttl must be positive")
	ErrInvalidSnapshot        = errors.New("hub.snapshot_interval must be positive")
	ErrInvalidDriver          = errors.New(`database.driver must be "gorm" or "pq"`)
)

// Default returns a configuration that runs fully in memory.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:   "gorm",
			Postgres: PostgresConfig{Port: 5432},
		},
		Server: ServerConfig{
			HTTPAddress:    ":8080",
			RPCAddress:     ":8081",
			APIAddress:     ":8082",
			MetricsAddress: ":9090",
		},
		NATS: NATSConfig{
			MaxReconnects: 10,
			ReconnectWait: 2 * time.Second,
			SubjectPrefix: "gamestation",
		},
		Redis: RedisConfig{
			PoolSize:  10,
			KeyPrefix: "gamestation",
		},
		Hub: HubConfig{
			SnapshotInterval: time.Minute,
			ChallengeTTL:     24 * time.Hour,
			LeaderboardSize:  100,
			MailboxSize:      256,
		},
		Log: LogConfig{Level: "info"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.http_address", d.Server.HTTPAddress)
	v.SetDefault("server.rpc_address", d.Server.RPCAddress)
	v.SetDefault("server.api_address", d.Server.APIAddress)
	v.SetDefault("server.metrics_address", d.Server.MetricsAddress)
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.postgres.port", d.Database.Postgres.Port)
	v.SetDefault("nats.max_reconnects", d.NATS.MaxReconnects)
	v.SetDefault("nats.reconnect_wait", d.NATS.ReconnectWait)
	v.SetDefault("nats.subject_prefix", d.NATS.SubjectPrefix)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("redis.key_prefix", d.Redis.KeyPrefix)
	v.SetDefault("hub.snapshot_interval", d.Hub.SnapshotInterval)
	v.SetDefault("hub.challenge_ttl", d.Hub.ChallengeTTL)
	v.SetDefault("hub.leaderboard_size", d.Hub.LeaderboardSize)
	v.SetDefault("hub.mailbox_size", d.Hub.MailboxSize)
	v.SetDefault("log.level", d.Log.Level)
}

// LoadConfig 从 path 目录读取 config.yaml，.env 中的变量会先被加载到环境中
func LoadConfig(path string) (*Config, error) {
	// .env 是可选的
	_ = godotenv.Load(filepath.Join(path, ".env"))

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Hub.LeaderboardSize <= 0:
		return ErrInvalidLeaderboardSize
	case c.Hub.MailboxSize <= 0:
		return ErrInvalidMailboxSize
	case c.Hub.ChallengeTTL <= 0:
		return ErrInvalidChallengeTTL
	case c.Hub.SnapshotInterval <= 0:
		return ErrInvalidSnapshot
	case c.Database.Driver != "gorm" && c.Database.Driver != "pq":
		return ErrInvalidDriver
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddress)
	assert.Equal(t, 24*time.Hour, cfg.Hub.ChallengeTTL)
	assert.Equal(t, 100, cfg.Hub.LeaderboardSize)
	assert.False(t, cfg.Database.Postgres.Enabled())
	assert.Equal(t, "gorm", cfg.Database.Driver)
}

func TestLoadConfig_FromYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  http_address: ":7000"
database:
  postgres:
    host: db.local
    port: 5432
    dbname: station
hub:
  leaderboard_size: 50
  challenge_ttl: 1h
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.HTTPAddress)
	assert.Equal(t, ":8081", cfg.Server.RPCAddress)
	assert.Equal(t, "db.local", cfg.Database.Postgres.Host)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.True(t, cfg.Database.Postgres.Enabled())
	assert.Equal(t, 50, cfg.Hub.LeaderboardSize)
	assert.Equal(t, time.Hour, cfg.Hub.ChallengeTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"default ok", func(*Config) {}, nil},
		{"leaderboard", func(c *Config) { c.Hub.LeaderboardSize = 0 }, ErrInvalidLeaderboardSize},
		{"mailbox", func(c *Config) { c.Hub.MailboxSize = -1 }, ErrInvalidMailboxSize},
		{"ttl", func(c *Config) { c.Hub.ChallengeTTL = 0 }, ErrInvalidChallengeTTL},
		{"snapshot", func(c *Config) { c.Hub.SnapshotInterval = 0 }, ErrInvalidSnapshot},
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }, ErrInvalidDriver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "station"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=station sslmode=disable", p.DSN())

	p.SSLMode = "require"
	assert.Contains(t, p.DSN(), "sslmode=require")
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_TYPE", "sqlite")
	t.Setenv("CACHE_TYPE", "memory")
	t.Setenv("APP_TIMEZONE", "Local")
	t.Setenv("REMINDER_TONIGHT_HOUR", "20")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "bakerybot", cfg.App.Name)
	assert.Equal(t, 500, cfg.App.HistoryLimit)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "./data/bakerybot.db", cfg.Store.DSN())

	loc, err := cfg.App.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("REMINDER_TONIGHT_HOUR", "24")
	_, err := Load()
	assert.ErrorContains(t, err, "REMINDER_TONIGHT_HOUR")

	t.Setenv("REMINDER_TONIGHT_HOUR", "18")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")
	_, err = Load()
	assert.ErrorContains(t, err, "APP_TIMEZONE")

	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("REMINDER_POLL_INTERVAL", "often")
	_, err = Load()
	assert.Error(t, err)
}

func TestStoreDSN(t *testing.T) {
	pg := StoreConfig{Type: "postgres", Host: "db", Name: "bakery", User: "u", Password: "p", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/bakery?sslmode=disable", pg.DSN())

	my := StoreConfig{Type: "mysql", Host: "db", Port: 3307, Name: "bakery", User: "u", Password: "p"}
	assert.Equal(t, "u:p@tcp(db:3307)/bakery?parseTime=true", my.DSN())

	lite := StoreConfig{Type: "sqlite", Path: "/tmp/x.db"}
	assert.Equal(t, "/tmp/x.db", lite.DSN())
}

func TestAddresses(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 9000}
	assert.Equal(t, "127.0.0.1:9000", s.Address())

	c := CacheConfig{RedisHost: "cache", RedisPort: 6380}
	assert.Equal(t, "cache:6380", c.RedisAddress())
}

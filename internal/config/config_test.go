/*
 * @author: sun977
 * @date: 2025.09.06
 * @description: 配置加载与校验测试
 */
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalConfigYAML 只包含必填项的最小配置
const minimalConfigYAML = `
server:
  host: "127.0.0.1"
  port: 8000
  mode: "test"
database:
  mysql:
    host: "127.0.0.1"
    database: "meghamaster_test"
  redis:
    host: "127.0.0.1"
log:
  level: "info"
  format: "json"
security:
  jwt:
    secret: "0123456789abcdef0123456789abcdef"
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return dir
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := writeConfigFile(t, minimalConfigYAML)

	cfg, err := LoadConfig(dir, "development")
	require.NoError(t, err)

	// 未配置的字段落到默认值
	assert.Equal(t, 30*time.Second, cfg.Broadcast.Interval)
	assert.Equal(t, "/ws", cfg.WebSocket.Path)
	assert.Equal(t, 10*time.Second, cfg.WebSocket.WriteWait)
	assert.Equal(t, 90*time.Second, cfg.WebSocket.IdleTimeout)
	assert.Equal(t, int64(512), cfg.WebSocket.MaxMessageSize)
	assert.Equal(t, 100, cfg.Weather.ObservationMax)
	assert.Equal(t, 30*time.Minute, cfg.Weather.ObservationTTL)
	assert.Equal(t, "session:user:", cfg.Session.KeyPrefix)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := writeConfigFile(t, minimalConfigYAML+`
broadcast:
  interval: 5s
websocket:
  idle_timeout: 20s
`)

	cfg, err := LoadConfig(dir, "development")
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Broadcast.Interval)
	assert.Equal(t, 20*time.Second, cfg.WebSocket.IdleTimeout)
}

func TestLoadConfigRejectsShortJWTSecret(t *testing.T) {
	dir := writeConfigFile(t, `
server:
  host: "127.0.0.1"
  port: 8000
  mode: "test"
database:
  mysql:
    host: "127.0.0.1"
    database: "meghamaster_test"
  redis:
    host: "127.0.0.1"
log:
  level: "info"
  format: "json"
security:
  jwt:
    secret: "tooshort"
`)

	_, err := LoadConfig(dir, "development")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")
}

func TestLoadConfigRejectsInvalidMode(t *testing.T) {
	dir := writeConfigFile(t, `
server:
  host: "127.0.0.1"
  port: 8000
  mode: "bogus"
database:
  mysql:
    host: "127.0.0.1"
    database: "meghamaster_test"
  redis:
    host: "127.0.0.1"
log:
  level: "info"
  format: "json"
security:
  jwt:
    secret: "0123456789abcdef0123456789abcdef"
`)

	_, err := LoadConfig(dir, "development")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server mode")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir(), "development")
	assert.Error(t, err)
}

func TestValidateConfigPortRange(t *testing.T) {
	dir := writeConfigFile(t, `
server:
  host: "127.0.0.1"
  port: 70000
  mode: "test"
database:
  mysql:
    host: "127.0.0.1"
    database: "meghamaster_test"
  redis:
    host: "127.0.0.1"
log:
  level: "info"
  format: "json"
security:
  jwt:
    secret: "0123456789abcdef0123456789abcdef"
`)

	_, err := LoadConfig(dir, "development")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

func TestGetAddress(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 8000}
	assert.Equal(t, "0.0.0.0:8000", s.GetAddress())
}

func TestGetMySQLDSN(t *testing.T) {
	m := MySQLConfig{
		Host:      "127.0.0.1",
		Port:      3306,
		Username:  "megha",
		Password:  "secret",
		Database:  "meghamaster",
		Charset:   "utf8mb4",
		ParseTime: true,
		Loc:       "Local",
	}
	assert.Equal(t, "megha:secret@tcp(127.0.0.1:3306)/meghamaster?charset=utf8mb4&parseTime=true&loc=Local", m.GetMySQLDSN())
}

func TestGetRedisAddress(t *testing.T) {
	r := RedisConfig{Host: "127.0.0.1", Port: 6379}
	assert.Equal(t, "127.0.0.1:6379", r.GetRedisAddress())
}

func TestEnvironmentHelpers(t *testing.T) {
	app := AppConfig{Environment: "development"}
	assert.True(t, app.IsDevelopment())
	assert.False(t, app.IsProduction())

	app.Environment = "production"
	assert.False(t, app.IsDevelopment())
	assert.True(t, app.IsProduction())
}

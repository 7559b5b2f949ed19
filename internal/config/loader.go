package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置文件
// configPath: 配置文件路径，如果为空则使用默认路径
// env: 环境标识，支持 development, test, production
func LoadConfig(configPath, env string) (*Config, error) {
	// 设置默认环境
	if env == "" {
		env = getEnvFromEnvironment()
	}

	// 创建viper实例
	v := viper.New()

	// 设置配置文件类型
	v.SetConfigType("yaml")

	// 设置配置文件路径
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// 根据环境选择配置文件
	configFile := getConfigFileName(configPath, env)
	v.SetConfigFile(configFile)

	// 设置环境变量前缀
	v.SetEnvPrefix("MEGHA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 绑定环境变量
	bindEnvironmentVariables(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	// 解析配置到结构体
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	// 验证配置
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 设置全局配置
	GlobalConfig = &config

	return &config, nil
}

// getEnvFromEnvironment 从环境变量获取环境标识
func getEnvFromEnvironment() string {
	env := os.Getenv("MEGHA_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	if env == "" {
		env = "development" // 默认开发环境
	}
	return env
}

// getDefaultConfigPath 获取默认配置文件路径
func getDefaultConfigPath() string {
	// 尝试从环境变量获取配置路径
	if configPath := os.Getenv("MEGHA_CONFIG_PATH"); configPath != "" {
		return configPath
	}

	// 使用默认路径
	return "configs"
}

// getConfigFileName 根据环境获取配置文件名
func getConfigFileName(configPath, env string) string {
	var configFile string

	switch env {
	case "production", "prod":
		configFile = filepath.Join(configPath, "config.prod.yaml")
	case "test", "testing":
		configFile = filepath.Join(configPath, "config.test.yaml")
	default:
		configFile = filepath.Join(configPath, "config.yaml")
	}

	// 检查文件是否存在，如果不存在则使用默认配置文件
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		defaultConfig := filepath.Join(configPath, "config.yaml")
		if _, err := os.Stat(defaultConfig); err == nil {
			return defaultConfig
		}
	}

	return configFile
}

// bindEnvironmentVariables 绑定环境变量
func bindEnvironmentVariables(v *viper.Viper) {
	// 数据库配置
	v.BindEnv("database.mysql.host", "MEGHA_MYSQL_HOST")
	v.BindEnv("database.mysql.port", "MEGHA_MYSQL_PORT")
	v.BindEnv("database.mysql.username", "MEGHA_MYSQL_USERNAME")
	v.BindEnv("database.mysql.password", "MEGHA_MYSQL_PASSWORD")
	v.BindEnv("database.mysql.database", "MEGHA_MYSQL_DATABASE")

	v.BindEnv("database.redis.host", "MEGHA_REDIS_HOST")
	v.BindEnv("database.redis.port", "MEGHA_REDIS_PORT")
	v.BindEnv("database.redis.password", "MEGHA_REDIS_PASSWORD")
	v.BindEnv("database.redis.database", "MEGHA_REDIS_DATABASE")

	// JWT配置
	v.BindEnv("security.jwt.secret", "MEGHA_JWT_SECRET")
	v.BindEnv("security.jwt.issuer", "MEGHA_JWT_ISSUER")
	v.BindEnv("security.jwt.algorithm", "MEGHA_JWT_ALGORITHM")

	// 服务器配置
	v.BindEnv("server.host", "MEGHA_SERVER_HOST")
	v.BindEnv("server.port", "MEGHA_SERVER_PORT")
	v.BindEnv("server.mode", "MEGHA_SERVER_MODE")

	// 广播配置
	v.BindEnv("broadcast.interval", "MEGHA_BROADCAST_INTERVAL")

	// 应用配置
	v.BindEnv("app.environment", "MEGHA_APP_ENVIRONMENT")
	v.BindEnv("app.debug", "MEGHA_APP_DEBUG")
}

// applyDefaults 填充与规格保持一致的默认值
func applyDefaults(config *Config) {
	if config.Broadcast.Interval <= 0 {
		config.Broadcast.Interval = defaultBroadcastInterval
	}
	if config.WebSocket.Path == "" {
		config.WebSocket.Path = "/ws"
	}
	if config.WebSocket.WriteWait <= 0 {
		config.WebSocket.WriteWait = defaultWriteWait
	}
	if config.WebSocket.IdleTimeout <= 0 {
		config.WebSocket.IdleTimeout = defaultIdleTimeout
	}
	if config.WebSocket.MaxMessageSize <= 0 {
		config.WebSocket.MaxMessageSize = defaultMaxMessageSize
	}
	if config.Weather.ObservationMax <= 0 {
		config.Weather.ObservationMax = defaultObservationMax
	}
	if config.Weather.ObservationTTL <= 0 {
		config.Weather.ObservationTTL = defaultObservationTTL
	}
	if config.Session.KeyPrefix == "" {
		config.Session.KeyPrefix = "session:user:"
	}
}

// validateConfig 验证配置
func validateConfig(config *Config) error {
	// 验证服务器配置
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Server.Mode != "debug" && config.Server.Mode != "release" && config.Server.Mode != "test" {
		return fmt.Errorf("invalid server mode: %s", config.Server.Mode)
	}

	// 验证数据库配置
	if config.Database.MySQL.Host == "" {
		return fmt.Errorf("mysql host is required")
	}

	if config.Database.MySQL.Database == "" {
		return fmt.Errorf("mysql database name is required")
	}

	if config.Database.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}

	// 验证JWT配置
	if config.Security.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	if len(config.Security.JWT.Secret) < 32 {
		return fmt.Errorf("jwt secret must be at least 32 characters long")
	}

	// 验证日志配置
	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	if !contains(validLogLevels, config.Log.Level) {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "json" && config.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}

	return nil
}

// contains 检查字符串切片是否包含指定元素
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// 占位符形如 ${VAR} 或 ${VAR:default}
var placeholderRe = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

// defaults 兜底默认值，低于配置文件与环境变量
var defaults = map[string]any{
	"app.name":    "essay-duet-api",
	"app.version": "v0.0.0",
	"app.env":     "development",

	"server.http.host":          "0.0.0.0",
	"server.http.port":          8080,
	"server.http.read_timeout":  "30s",
	"server.http.write_timeout": "60s",
	"server.http.idle_timeout":  "120s",

	"database.postgres.host":               "localhost",
	"database.postgres.port":               5432,
	"database.postgres.user":               "postgres",
	"database.postgres.database":           "essay_duet",
	"database.postgres.ssl_mode":           "disable",
	"database.postgres.max_open_conns":     50,
	"database.postgres.max_idle_conns":     10,
	"database.postgres.conn_max_lifetime":  "30m",
	"database.postgres.conn_max_idle_time": "5m",

	"cache.redis.host":           "localhost",
	"cache.redis.port":           6379,
	"cache.redis.db":             0,
	"cache.redis.pool_size":      100,
	"cache.redis.min_idle_conns": 10,
	"cache.redis.dial_timeout":   "5s",
	"cache.redis.read_timeout":   "3s",
	"cache.redis.write_timeout":  "3s",

	"messaging.redis_stream.max_len":                  100000,
	"messaging.redis_stream.consumer_group":           "notify-workers",
	"messaging.redis_stream.block_timeout":            "5s",
	"messaging.redis_stream.claim_interval":           "30s",
	"messaging.redis_stream.retry_limit":              3,
	"messaging.redis_stream.retry_backoff.initial":    "1s",
	"messaging.redis_stream.retry_backoff.max":        "30s",
	"messaging.redis_stream.retry_backoff.multiplier": 2.0,

	"collab.max_turn_words": 50,
	"collab.draft_ttl":      "1h",
	"collab.snippet_length": 200,
	"export.output_dir":     "essays",
	"delivery.mode":         "log",
	"delivery.timeout":      "10s",

	"observability.logging.level":       "info",
	"observability.logging.format":      "json",
	"observability.logging.output":      "stdout",
	"observability.tracing.enabled":     true,
	"observability.tracing.exporter":    "otlp",
	"observability.tracing.endpoint":    "localhost:4317",
	"observability.tracing.sample_rate": 1.0,
	"observability.metrics.enabled":     true,
	"observability.metrics.port":        9464,
	"observability.metrics.path":        "/metrics",

	"security.rate_limit.enabled":             true,
	"security.rate_limit.requests_per_second": 100,
	"security.rate_limit.burst":               200,
}

// Load 加载配置：默认配置文件 -> 环境配置文件 -> 环境变量
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := mergeFile(v, "configs/config.yaml", false); err != nil {
		return nil, err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := mergeFile(v, fmt.Sprintf("configs/config.%s.yaml", env), true); err != nil {
		return nil, err
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// MustLoad 加载配置，失败时 panic
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// mergeFile 读取文件，展开环境变量占位符后合并进 viper
func mergeFile(v *viper.Viper, path string, optional bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	reader := strings.NewReader(expandEnv(string(raw)))
	if v.ConfigFileUsed() == "" {
		if err := v.ReadConfig(reader); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		// 标记已加载文件，后续文件走 MergeConfig
		v.SetConfigFile(path)
		return nil
	}
	if err := v.MergeConfig(reader); err != nil {
		return fmt.Errorf("failed to merge config %s: %w", path, err)
	}
	return nil
}

// expandEnv 替换 ${VAR:default} 占位符；未定义且无默认值的原样保留
func expandEnv(s string) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := placeholderRe.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(parts[1]); ok {
			return val
		}
		if parts[2] != "" {
			return parts[3]
		}
		return match
	})
}

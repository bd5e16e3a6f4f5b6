package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/homerec/logging"
)

// EnvPrefix 是环境变量前缀，例如 HOMEREC_FEED_SOURCE=sqlite 覆盖 feed.source。
const EnvPrefix = "HOMEREC_"

// ConfigPathEnvVar 可指定配置文件路径。
const ConfigPathEnvVar = "HOMEREC_CONFIG"

// DefaultConfigPaths 按顺序查找，使用第一个存在的文件。
var DefaultConfigPaths = []string{
	"homerec.yaml",
	"homerec.yml",
	"/etc/homerec/config.yaml",
}

// Config 是进程级配置：默认值 -> YAML 文件 -> 环境变量，逐层覆盖。
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Model   ModelConfig   `koanf:"model"`
	Feed    FeedConfig    `koanf:"feed"`
	Ranking RankingConfig `koanf:"ranking"`
}

type ServerConfig struct {
	Address         string        `koanf:"address" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// ModelConfig 描述价格模型的来源。Endpoint 非空时使用远程模型，否则从 Path 加载。
type ModelConfig struct {
	Path     string        `koanf:"path"`
	Endpoint string        `koanf:"endpoint" validate:"omitempty,url"`
	Timeout  time.Duration `koanf:"timeout" validate:"gte=0"`
	// ReferenceYear 为 0 时使用当前年份
	ReferenceYear int `koanf:"reference_year" validate:"gte=0"`
}

// FeedConfig 描述房源目录来源。Source 可以是逗号分隔的多个来源（例如 "sqlite,mock"），
// 多个来源并发读取，按书写顺序合并，同一 ID 保留先出现的一条。
type FeedConfig struct {
	Source     string      `koanf:"source" validate:"feed_sources"`
	Path       string      `koanf:"path"`
	Count      int         `koanf:"count" validate:"gte=0"`
	Seed       int64       `koanf:"seed"`
	SQLitePath string      `koanf:"sqlite_path"`
	Redis      RedisConfig `koanf:"redis"`
}

// FeedSources 是支持的目录来源。
var FeedSources = []string{"mock", "file", "redis", "sqlite"}

// Sources 返回去空白后的来源列表。
func (c FeedConfig) Sources() []string {
	return splitList(c.Source)
}

// Uses 报告 Source 中是否包含 name。
func (c FeedConfig) Uses(name string) bool {
	return slices.Contains(c.Sources(), name)
}

// RedisConfig 为空 Addr 表示不使用 Redis。
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
	Key      string `koanf:"key"`
}

type RankingConfig struct {
	TopN       int    `koanf:"top_n" validate:"gte=0,lte=3"`
	FilterExpr string `koanf:"filter_expr"`
	// Blacklist 为运营下架的房源 ID；BlacklistKey 非空时还会从 Store 读取，
	// 配置了 feed.redis.addr 时用 Redis，否则用进程内存（可通过 PUT /api/delisted 维护）
	Blacklist    []string `koanf:"blacklist"`
	BlacklistKey string   `koanf:"blacklist_key"`
	// DiversityKey 非空时按该维度（city / state / 标签名）打散
	DiversityKey string `koanf:"diversity_key"`
	// PipelinePath 指向 pipeline YAML，为空时使用默认链路
	PipelinePath string `koanf:"pipeline_path"`
}

// Default 返回默认配置。
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Model: ModelConfig{
			Path:    "price_model.pkl",
			Timeout: 5 * time.Second,
		},
		Feed: FeedConfig{
			Source: "mock",
			Count:  20,
			Seed:   42,
			Redis:  RedisConfig{Key: "homerec:properties"},
		},
		Ranking: RankingConfig{TopN: 3},
	}
}

// LoggingConfig 转换为 logging.Config。
func (c LogConfig) LoggingConfig() logging.Config {
	return logging.Config{Level: c.Level, Format: c.Format}
}

var sliceConfigPaths = []string{
	"ranking.blacklist",
}

// Load 加载配置。path 为空时依次查找 HOMEREC_CONFIG 与 DefaultConfigPaths，都不存在则只用默认值与环境变量。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	known := make(map[string]string)
	for _, key := range k.Keys() {
		known[strings.ReplaceAll(key, ".", "_")] = key
	}
	for _, key := range sliceConfigPaths {
		known[strings.ReplaceAll(key, ".", "_")] = key
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform(known)), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envTransform 把 HOMEREC_FEED_SQLITE_PATH 映射到 feed.sqlite_path；未知变量被忽略。
func envTransform(known map[string]string) func(string) string {
	return func(s string) string {
		name := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if name == "config" {
			return ""
		}
		return known[name]
	}
}

func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		str, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		if err := k.Set(path, splitList(str)); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

func splitList(s string) []string {
	parts := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// feed_sources：至少一个来源，每个都受支持且不重复
	_ = v.RegisterValidation("feed_sources", func(fl validator.FieldLevel) bool {
		sources := splitList(fl.Field().String())
		if len(sources) == 0 {
			return false
		}
		seen := make(map[string]bool, len(sources))
		for _, src := range sources {
			if !slices.Contains(FeedSources, src) || seen[src] {
				return false
			}
			seen[src] = true
		}
		return true
	})
	return v
}

// Validate 校验字段取值与跨字段约束。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	fc := c.Feed
	switch {
	case fc.Uses("file") && fc.Path == "":
		return fmt.Errorf("feed.path is required when feed.source includes file")
	case fc.Uses("sqlite") && fc.SQLitePath == "":
		return fmt.Errorf("feed.sqlite_path is required when feed.source includes sqlite")
	case fc.Uses("redis") && fc.Redis.Addr == "":
		return fmt.Errorf("feed.redis.addr is required when feed.source includes redis")
	}
	return nil
}

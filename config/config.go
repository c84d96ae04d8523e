// Package config bitscan 的yaml配置
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hust-tianbo/go_bitmap/log"
)

// ErrNoLogOutput 配置了 log 段但没有任何输出端
var ErrNoLogOutput = errors.New("config: log has no output")

const defaultCacheCapacity = 128

type Config struct {
	Log           log.Config `yaml:"log"`
	ScanSet       bool       `yaml:"scan_set"`       // 默认扫描置位区间
	CacheCapacity int        `yaml:"cache_capacity"` // 扫描结果缓存容量
}

// Default 控制台输出 info 级别，扫描置位区间
func Default() *Config {
	return &Config{
		Log: log.Config{
			{Writer: log.OutputConsole, Level: "info", Formatter: "console"},
		},
		ScanSet:       true,
		CacheCapacity: defaultCacheCapacity,
	}
}

// Load 读取并解析配置文件，未出现的字段保持默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.Log) == 0 {
		return nil, ErrNoLogOutput
	}
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = defaultCacheCapacity
	}
	return cfg, nil
}

// SetupLog 按配置替换默认logger
func SetupLog(cfg *Config) error {
	if len(cfg.Log) == 0 {
		return ErrNoLogOutput
	}
	return log.DefaultLogFactory.Setup("default", &log.ConfigDecoder{Config: cfg.Log})
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds every setting a driftbase-node or driftbase-gateway
// process needs.
type Config struct {
	APIPort               int           `yaml:"api_port"`
	BlockSize             int           `yaml:"block_size"`
	MetaReplicationFactor int           `yaml:"meta_replication_factor"`
	InlineThreshold       int           `yaml:"inline_threshold"`
	RPCTimeout            time.Duration `yaml:"rpc_timeout"`

	LogLevel       string `yaml:"log_level"`
	LogJSON        bool   `yaml:"log_json"`
	MetricsPort    int    `yaml:"metrics_port"`
	DataDir        string `yaml:"data_dir"`
	BlockStoreKind string `yaml:"block_store_kind"`
	PrefetchWindow int    `yaml:"prefetch_window"`
}

// BlockStoreKind values recognized under block_store_kind.
const (
	BlockStoreBolt = "bolt"
	BlockStoreDir  = "dir"
)

// Default returns the baseline configuration used when no file or
// flag overrides either key.
func Default() *Config {
	return &Config{
		APIPort:               9000,
		BlockSize:             4 << 20, // 4 MiB
		MetaReplicationFactor: 3,
		InlineThreshold:       256 << 10, // 256 KiB
		RPCTimeout:            5 * time.Second,

		LogLevel:       "info",
		LogJSON:        false,
		MetricsPort:    9100,
		DataDir:        "./data",
		BlockStoreKind: BlockStoreBolt,
		PrefetchWindow: 2,
	}
}

// Load reads path, overlaying its keys on top of Default. A missing
// file is not an error: the defaults apply as-is, since a pure
// flag-driven invocation is a legitimate way to run a single node.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// BindFlags registers every recognized key as a persistent flag on
// cmd, defaulted from cfg and bound directly to cfg's fields, so parsed
// flag values are already in cfg when cmd's Run function executes.
func BindFlags(cmd *cobra.Command, cfg *Config) {
	cmd.PersistentFlags().IntVar(&cfg.APIPort, "api-port", cfg.APIPort, "gateway HTTP port")
	cmd.PersistentFlags().IntVar(&cfg.BlockSize, "block-size", cfg.BlockSize, "chunk/block size in bytes")
	cmd.PersistentFlags().IntVar(&cfg.MetaReplicationFactor, "meta-replication-factor", cfg.MetaReplicationFactor, "replication factor for table rows and blocks")
	cmd.PersistentFlags().IntVar(&cfg.InlineThreshold, "inline-threshold", cfg.InlineThreshold, "object size in bytes below which the payload is stored inline in the metadata row")
	cmd.PersistentFlags().DurationVar(&cfg.RPCTimeout, "rpc-timeout", cfg.RPCTimeout, "per-RPC timeout")

	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "output logs in JSON format")
	cmd.PersistentFlags().IntVar(&cfg.MetricsPort, "metrics-port", cfg.MetricsPort, "Prometheus metrics port")
	cmd.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "local data directory")
	cmd.PersistentFlags().StringVar(&cfg.BlockStoreKind, "block-store-kind", cfg.BlockStoreKind, "local block store implementation (bolt, dir)")
	cmd.PersistentFlags().IntVar(&cfg.PrefetchWindow, "prefetch-window", cfg.PrefetchWindow, "GET block prefetch depth")
}

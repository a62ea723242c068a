/*
Package config loads driftbase's node/gateway configuration from a YAML
file (gopkg.in/yaml.v3, as cmd/warren's go.mod already pulls in) with
CLI flag overrides layered on top via spf13/cobra, mirroring the
flag-then-cobra-subcommand convention cmd/warren/main.go uses for
logging setup.

Recognized keys: api_port, block_size, meta_replication_factor,
inline_threshold, rpc_timeout, plus the ambient keys every driftbase
process needs regardless of core-spec scope: log_level, log_json,
metrics_port, data_dir, block_store_kind, prefetch_window.
*/
package config

package main

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// lzwpack config.toml key mapping to command flags.
type fileConfig struct {
	DataDir     string `toml:"data_dir"`
	Verbose     bool   `toml:"verbose"`
	Codec       string `toml:"codec"`
	MaxWidth    uint   `toml:"max_width"`
	Shards      int    `toml:"shards"`
	Strategy    string `toml:"strategy"`
	Workers     int    `toml:"workers"`
	CacheSize   int    `toml:"cache_size"`
	MetricsAddr string `toml:"metrics_addr"`
	OutputGCS   string `toml:"output_gcs"`
	S3Region    string `toml:"s3_region"`
	S3Endpoint  string `toml:"s3_endpoint"`
}

// loadConfig reads path and returns the flag values it defines, keyed by
// flag name.
func loadConfig(path string) (map[string]string, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load lzwpack config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load lzwpack config: unknown key %q", undecoded[0].String())
	}

	values := make(map[string]string)
	if meta.IsDefined("data_dir") {
		values["data-dir"] = raw.DataDir
	}
	if meta.IsDefined("verbose") {
		values["verbose"] = strconv.FormatBool(raw.Verbose)
	}
	if meta.IsDefined("codec") {
		values["codec"] = raw.Codec
	}
	if meta.IsDefined("max_width") {
		values["max-width"] = strconv.FormatUint(uint64(raw.MaxWidth), 10)
	}
	if meta.IsDefined("shards") {
		values["shards"] = strconv.Itoa(raw.Shards)
	}
	if meta.IsDefined("strategy") {
		values["strategy"] = raw.Strategy
	}
	if meta.IsDefined("workers") {
		values["workers"] = strconv.Itoa(raw.Workers)
	}
	if meta.IsDefined("cache_size") {
		values["cache-size"] = strconv.Itoa(raw.CacheSize)
	}
	if meta.IsDefined("metrics_addr") {
		values["metrics-addr"] = raw.MetricsAddr
	}
	if meta.IsDefined("output_gcs") {
		values["output-gcs"] = raw.OutputGCS
	}
	if meta.IsDefined("s3_region") {
		values["s3-region"] = raw.S3Region
	}
	if meta.IsDefined("s3_endpoint") {
		values["s3-endpoint"] = raw.S3Endpoint
	}
	return values, nil
}

// applyConfigFile seeds the flags of cmd from path. Flags set on the command
// line, and keys naming flags cmd does not have, are left alone.
func applyConfigFile(cmd *cobra.Command, path string) error {
	values, err := loadConfig(path)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	for name, value := range values {
		f := flags.Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		if err := flags.Set(name, value); err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}
	}
	return nil
}

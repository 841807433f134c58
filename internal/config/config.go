package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/opsforge/state-reconciler/pkg/reconcile"
)

// Load reads the configuration with Viper.
func Load() (*reconcile.Config, error) {
	v := viper.New()

	// Load YAML configuration.
	path, ok := os.LookupEnv("SRC_CONFIG_FILE")
	if ok {
		// Load a specific config file.
		v.SetConfigFile(path)
	} else {
		// Try to find the config file in standard locations.
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to determine user's home directory")
		}

		v.SetConfigName("state-reconciler")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(home + "/.config")
		v.AddConfigPath("/etc")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	// Setup environment variables handling.
	v.SetEnvPrefix("src")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults.
	v.SetDefault("backend", "http")

	v.SetDefault("http.endpoint", "http://127.0.0.1:8080/api")
	v.SetDefault("http.token", "")
	v.SetDefault("http.timeout", "30s")

	v.SetDefault("http.discovery.enabled", false)
	v.SetDefault("http.discovery.service", "state-reconciler")
	v.SetDefault("http.discovery.domain", "server.local.")
	v.SetDefault("http.discovery.server", "127.0.0.1:53")
	v.SetDefault("http.discovery.timeout", "30s")
	v.SetDefault("http.discovery.path", "/api")

	v.SetDefault("etcd.endpoints", []string{"127.0.0.1:2379"})
	v.SetDefault("etcd.timeout", "30s")
	v.SetDefault("etcd.prefix", "STATE_RECONCILER")

	v.SetDefault("reconcile.checkmode", false)
	v.SetDefault("reconcile.exclude", []string{})
	v.SetDefault("reconcile.allowdelete", true)

	cfg := &reconcile.Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}

	return cfg, nil
}

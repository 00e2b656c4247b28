// Package config loads runtime settings from an optional JSON file with
// sensible defaults, backed by viper.
package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Storage backend names accepted by storage.backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Load reads scorched.cfg.json from configDir and sets defaults. A missing
// file is not an error; a malformed one is.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "")
	viper.SetDefault("dataDir", "./scorched-data")

	viper.SetDefault("storage.backend", BackendSQLite)
	viper.SetDefault("storage.sqlitePath", "scorched.db")

	viper.SetDefault("leaderboard.enabled", false)
	viper.SetDefault("leaderboard.serverUrl", "http://localhost:5000")
	viper.SetDefault("leaderboard.apiKey", "")
	viper.SetDefault("leaderboard.playerName", "Player")

	viper.SetConfigName("scorched.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil // defaults only
		}
		return err
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

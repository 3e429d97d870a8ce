package util

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ReadConfig loads .env (when present) into the process environment, then data/config.yaml.
// Environment variables override file values.
func ReadConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("fatal error env file: %w", err)
	}

	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

func SetDefaults() {
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("WEBSOCKET_PORT", 6666)
	viper.SetDefault("PROXY_PORT", 6767)
	viper.SetDefault("WEBSOCKET_WORKERS", 16)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("USE_RATE_LIMIT", false)
	viper.SetDefault("API_RATE_LIMIT", 10.0)
	viper.SetDefault("HTTP_SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("HTTP_SERVER_WRITE_TIMEOUT", "5s")
	viper.SetDefault("HTTP_SERVER_IDLE_TIMEOUT", "60s")
	viper.SetDefault("HTTP_SERVER_READ_HEADER_TIMEOUT", "5s")

	viper.SetDefault("ROUTING_SERVICE_URL", "http://localhost:5000")
	viper.SetDefault("ROUTING_PROFILE", "driving")
	viper.SetDefault("ROUTING_TIMEOUT", "10s")
	viper.SetDefault("ROUTING_RATE_LIMIT", 20.0)
	viper.SetDefault("ROUTING_GEOMETRIES", "polyline")
	viper.SetDefault("ROUTING_USE_EXCLUDE_TOLL", false)

	viper.SetDefault("TOLL_DATASET_PATH", "./data/wa-tolls.json")

	viper.SetDefault("GEOFENCE_STRATEGY", "bbox")
	viper.SetDefault("GEOFENCE_BUFFER_DEGREES", 0.01)
	viper.SetDefault("GEOFENCE_BUFFER_METERS", 1100.0)

	viper.SetDefault("PROBE_CORRIDOR_BEARING", 90.0)
	viper.SetDefault("PROBE_AUTO_BEARING", false)
	viper.SetDefault("PROBE_OFFSETS", "0.05,-0.05,0.03,-0.03")
	viper.SetDefault("PROBE_MAX_CONCURRENCY", 2)
	viper.SetDefault("PROBE_TIMEOUT", "8s")
}

// Package config loads the process configuration from the environment
// (optionally seeded by a .env file) and the pipeline from a YAML file.
// file: config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"gamepad-websocket/logger"
	"gamepad-websocket/models"
	"gamepad-websocket/websocket"
)

// Config is the full process configuration.
type Config struct {
	Port         uint16
	Endpoint     string
	InputTimeout time.Duration
	Transform    string
	CyclePeriod  time.Duration
	MappingFile  string

	AppEnv         string
	LogDir         string
	ApplicationURL string

	CloudWatchEnabled   bool
	CloudWatchNamespace string
	XRayEnabled         bool

	Pipeline *Pipeline
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads envFile when it exists, then the environment, then the
// pipeline file the environment points at.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: reading %s: %v", models.ErrConfiguration, envFile, err)
		}
	}
	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	pipeline, err := LoadPipeline(cfg.MappingFile)
	if err != nil {
		return nil, err
	}
	cfg.Pipeline = pipeline
	logger.Info.Printf("[config.Load] port=%d endpoint=%s mode=%s sources=%d",
		cfg.Port, cfg.Endpoint, pipeline.Mode, len(pipeline.Sources))
	return cfg, nil
}

// FromEnv builds the process settings from lookup, applying defaults.
func FromEnv(lookup LookupFunc) (*Config, error) {
	env := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}

	port, err := strconv.ParseUint(env("PORT", "8080"), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: PORT: %v", models.ErrConfiguration, err)
	}
	timeout, err := positiveDuration("INPUT_TIMEOUT", env("INPUT_TIMEOUT", "1s"))
	if err != nil {
		return nil, err
	}
	period, err := positiveDuration("CYCLE_PERIOD", env("CYCLE_PERIOD", "20ms"))
	if err != nil {
		return nil, err
	}
	cloudWatch, err := boolean("CLOUDWATCH_ENABLED", env("CLOUDWATCH_ENABLED", "false"))
	if err != nil {
		return nil, err
	}
	xray, err := boolean("XRAY_ENABLED", env("XRAY_ENABLED", "false"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                uint16(port),
		Endpoint:            env("WS_ENDPOINT", "/ws"),
		InputTimeout:        timeout,
		Transform:           env("DEVICE_ID_TRANSFORM", ""),
		CyclePeriod:         period,
		MappingFile:         env("MAPPING_FILE", "config/mapping.yaml"),
		AppEnv:              env("APP_ENV", "development"),
		LogDir:              env("LOG_DIR", "./logs"),
		ApplicationURL:      env("APPLICATION_URL", ""),
		CloudWatchEnabled:   cloudWatch,
		CloudWatchNamespace: env("CLOUDWATCH_NAMESPACE", "GamepadWebsocket"),
		XRayEnabled:         xray,
	}
	if cfg.Endpoint[0] != '/' {
		return nil, fmt.Errorf("%w: WS_ENDPOINT %q must start with /", models.ErrConfiguration, cfg.Endpoint)
	}
	if err := websocket.ValidateTransform(cfg.Transform); err != nil {
		return nil, err
	}
	return cfg, nil
}

func positiveDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", models.ErrConfiguration, key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %v", models.ErrConfiguration, key, d)
	}
	return d, nil
}

func boolean(key, raw string) (bool, error) {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", models.ErrConfiguration, key, err)
	}
	return b, nil
}

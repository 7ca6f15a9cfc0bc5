package config

import (
	"errors"
	"strconv"
	"strings"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/fjell-etl/internal/domain"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	InputPath  string
	OutputPath string

	// UTM zone every source row is assumed to lie in.
	Zone domain.Zone

	// StrictCoordinates aborts the run on unparsable UTM text instead of
	// writing NaN coordinates.
	StrictCoordinates bool

	LogLevel  string
	LogFormat string

	// MetricsTextfile, when set, receives the run's metrics in Prometheus
	// text exposition format.
	MetricsTextfile string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	zoneNumber, err := strconv.Atoi(sharedcfg.EnvOrDefault("UTM_ZONE_NUMBER", "32"))
	if err != nil || zoneNumber < 1 || zoneNumber > 60 {
		return nil, errors.New("invalid UTM_ZONE_NUMBER: must be an integer between 1 and 60")
	}

	zoneLetter := strings.ToUpper(strings.TrimSpace(sharedcfg.EnvOrDefault("UTM_ZONE_LETTER", "V")))
	if len(zoneLetter) != 1 || !strings.Contains(domain.ZoneLetters, zoneLetter) {
		return nil, errors.New("invalid UTM_ZONE_LETTER: must be one of " + domain.ZoneLetters)
	}

	strict, err := strconv.ParseBool(sharedcfg.EnvOrDefault("STRICT_COORDINATES", "false"))
	if err != nil {
		return nil, errors.New("invalid STRICT_COORDINATES: must be a boolean")
	}

	cfg := &Config{
		InputPath:         sharedcfg.EnvOrDefault("INPUT_PATH", "fjell.csv"),
		OutputPath:        sharedcfg.EnvOrDefault("OUTPUT_PATH", "fjell.json"),
		Zone:              domain.Zone{Number: zoneNumber, Letter: zoneLetter},
		StrictCoordinates: strict,
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		MetricsTextfile:   sharedcfg.EnvOrDefault("METRICS_TEXTFILE", ""),
	}

	if cfg.InputPath == "" {
		return nil, errors.New("INPUT_PATH is required")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH is required")
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("invalid LOG_FORMAT: must be text or json")
	}

	return cfg, nil
}

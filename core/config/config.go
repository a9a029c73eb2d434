package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the target.
	ErrParsingConfig = errors.New("failed to parse config from environment")

	// ErrReadingConfigFile is returned when a config file cannot be read or decoded.
	ErrReadingConfigFile = errors.New("failed to read config file")

	// ErrNilConfig is returned when a nil pointer is passed as the load target.
	ErrNilConfig = errors.New("config target must be a non-nil pointer")
)

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> T
)

// Load parses environment variables into cfg. The .env file in the working directory,
// if present, is loaded once before the first parse. Each type is parsed once and
// cached; later calls with the same type receive the cached value.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		// A missing .env is normal in production.
		_ = godotenv.Load()
	})

	typ := reflect.TypeFor[T]()
	if cached, ok := cache.Load(typ); ok {
		*cfg = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	actual, _ := cache.LoadOrStore(typ, parsed)
	*cfg = actual.(T)
	return nil
}

// MustLoad is like Load but panics on failure. Intended for process startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// LoadFile decodes a YAML file on top of cfg. Fields absent from the file keep
// the values cfg already holds, so it is applied after Load to let the file
// override environment defaults.
func LoadFile(path string, cfg any) error {
	if cfg == nil {
		return ErrNilConfig
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrReadingConfigFile, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Join(ErrReadingConfigFile, fmt.Errorf("decode %s: %w", path, err))
	}

	return nil
}

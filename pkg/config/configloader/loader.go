// Package configloader builds typed configuration from a YAML file, a .env file and the environment.
package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Validator interface {
	Validate() error
}

const (
	// DefaultConfigFile is read from the working directory when no other file is given.
	DefaultConfigFile = "config.yaml"
	// EnvFile is read from the working directory after the YAML file.
	EnvFile = ".env"
)

// Load reads DefaultConfigFile, then EnvFile, then process environment variables prefixed
// with the upper-cased service name, e.g. PRODUCT_STORAGE_BACKEND for storage.backend.
// Later sources override earlier ones. The result is validated before it is returned.
func Load[T Validator](serviceName string) (T, error) {
	return LoadFile[T](serviceName, DefaultConfigFile)
}

// LoadFile is Load with an explicit YAML file. Missing files are skipped, malformed ones are errors.
func LoadFile[T Validator](serviceName, configFile string) (T, error) {
	return load[T](serviceName, configFile, EnvFile)
}

func load[T Validator](serviceName, configFile, envFile string) (T, error) {
	var cfg T
	k := koanf.New(".")
	prefix := strings.ToUpper(serviceName) + "_"
	toKey := keyMapper(prefix)

	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load config file %s: %w", configFile, err)
	}

	if err := loadEnvFile(k, envFile, toKey); err != nil {
		return cfg, err
	}

	if err := k.Load(env.Provider(prefix, ".", toKey), nil); err != nil {
		return cfg, fmt.Errorf("failed to load %s* environment variables: %w", prefix, err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadEnvFile applies the variables of a dotenv file, mapped like process environment variables.
// Variables without the service prefix are ignored there too.
func loadEnvFile(k *koanf.Koanf, path string, toKey func(string) string) error {
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	values := make(map[string]any, len(vars))
	for name, value := range vars {
		if key := toKey(name); key != "" {
			values[key] = value
		}
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// keyMapper turns PRODUCT_CLIENT_GRPC_ADDR into client.grpc.addr.
// Names without the prefix map to the empty key.
func keyMapper(prefix string) func(string) string {
	return func(name string) string {
		if !strings.HasPrefix(strings.ToUpper(name), prefix) {
			return ""
		}
		return strings.ReplaceAll(strings.ToLower(name[len(prefix):]), "_", ".")
	}
}

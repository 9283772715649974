package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvFileVar names an extra env file loaded ahead of the given paths.
const EnvFileVar = "WAVELENGTH_ENV_FILE"

// LoadDotEnv loads each env file that exists, in order. Variables already
// in the environment, or set by an earlier file, are kept.
func LoadDotEnv(paths ...string) error {
	if extra := os.Getenv(EnvFileVar); extra != "" {
		paths = append([]string{extra}, paths...)
	}
	for _, path := range paths {
		vars, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		for key, value := range vars {
			if _, set := os.LookupEnv(key); set {
				continue
			}
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("set %s from %s: %w", key, path, err)
			}
		}
	}
	return nil
}

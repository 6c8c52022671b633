package config

import (
	"os"

	"github.com/joho/godotenv"
)

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadDotEnv loads environment variables from a .env file. An empty path
// defaults to ".env" in the current directory. A missing file is not an
// error; the file is simply optional.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if !fileExists(path) {
		return nil
	}
	return godotenv.Load(path)
}

// MustLoadDotEnv is LoadDotEnv except that a missing file is an error.
func MustLoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	return godotenv.Load(path)
}

// LoadDotEnvFromFiles loads several .env files in order, skipping any that
// do not exist. godotenv.Load never overrides variables that are already
// set, so the first file to define a variable wins.
func LoadDotEnvFromFiles(paths ...string) error {
	return loadEach(godotenv.Load, paths)
}

// OverloadDotEnvFromFiles loads several .env files in order, skipping any
// that do not exist. Later files overwrite values from earlier ones.
func OverloadDotEnvFromFiles(paths ...string) error {
	return loadEach(godotenv.Overload, paths)
}

func loadEach(load func(...string) error, paths []string) error {
	for _, path := range paths {
		if !fileExists(path) {
			continue
		}
		if err := load(path); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig builds the application configuration from an optional .env
// file plus the process environment. Variables already present in the
// environment take precedence over the file.
func LoadConfig(envPath string) (AppConfig, error) {
	if err := LoadDotEnv(envPath); err != nil {
		return AppConfig{}, err
	}

	envCfg, err := LoadFromEnv()
	if err != nil {
		return AppConfig{}, err
	}
	return envCfg.Normalize().ToAppConfig(), nil
}

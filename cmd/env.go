package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	// envSelector picks .env.<name> instead of .env
	envSelector = "BINSIM_ENV"
	// envLogLevel is the default for --log
	envLogLevel = "BINSIM_LOG"
)

// envFile returns the dotenv file to load.
func envFile() string {
	if name := os.Getenv(envSelector); name != "" {
		return ".env." + name
	}
	return ".env"
}

// loadEnv loads the dotenv file if it exists. Variables already set in the
// environment win over the file.
func loadEnv() error {
	file := envFile()
	if err := godotenv.Load(file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", file, err)
	}
	logrus.Debugf("loaded env file %s", file)
	return nil
}

// Package main is the entry point for the tapcheck application
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethpandaops/tapcheck/cmd"
	"github.com/joho/godotenv"
)

const (
	envFlag      = "--env"
	envFlagEqual = "--env="
)

func main() {
	if envFile := parseEnvFlag(os.Args[1:]); envFile != "" {
		if err := loadEnvFile(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading env file: %v\n", err)
			os.Exit(1)
		}
		// Re-read LOG_LEVEL from the loaded file
		cmd.InitLogger()
	}

	cmd.Execute()
}

// parseEnvFlag returns the value of --env, if present
func parseEnvFlag(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if arg == envFlag && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, envFlagEqual) {
			return arg[len(envFlagEqual):]
		}
	}

	return ""
}

// loadEnvFile loads the specified environment file, overriding values from .env
func loadEnvFile(file string) error {
	if err := godotenv.Overload(file); err != nil {
		return fmt.Errorf("failed to load env file '%s': %w", file, err)
	}

	return nil
}

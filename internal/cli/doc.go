// Package cli provides command-line interface setup and configuration
// for the flickfinder application. It handles flag parsing, command
// creation, logger setup and configuration management using cobra, viper
// and godotenv.
package cli

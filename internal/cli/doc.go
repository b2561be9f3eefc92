// Package cli provides command-line interface setup and configuration
// for the ordertrans application. It handles flag parsing, command
// creation, configuration loading using cobra and viper, and the wiring
// of spreadsheet and translation backends from the loaded configuration.
package cli

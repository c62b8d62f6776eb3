// Package config defines the application configuration structure and its
// loading/validation logic. Configuration comes from environment variables
// (WORDWELL_ prefix) layered over an optional config.yaml file.
package config

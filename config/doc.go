// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Missing values are filled with defaults suitable for the public 12306
// endpoints, so the server runs with no config file at all.
package config

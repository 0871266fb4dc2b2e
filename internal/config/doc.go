// Package config loads the YAML configuration of the slicescan command.
package config

// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Missing values are filled with defaults before validation, so an empty file
// yields a working setup for the Qingdao approaches box. Several named stream
// feeds may be listed and picked by name.
package config

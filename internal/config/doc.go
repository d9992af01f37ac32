// Package config defines the settings shared by the home-security binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Every field can be overridden by an environment variable prefixed with
// HOME_SECURITY_, e.g. HOME_SECURITY_STORAGE_DRIVER=sqlite.
package config

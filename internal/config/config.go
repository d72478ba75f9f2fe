// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// Options holds the configuration values for the application.
type Options struct {
	// RESTAddress is the REST listener's address (ip:port).
	RESTAddress string `json:"rest_address"`

	// SOAPAddress is the SOAP listener's address (ip:port).
	SOAPAddress string `json:"soap_address"`

	// LogLevel is the minimum zap level to emit.
	LogLevel string `json:"log_level"`

	// TLSCert and TLSKey enable HTTPS on both listeners when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Users seeds the credential store with username to secret pairs.
	Users map[string]string `json:"users"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// DefaultUsers is the credential set used when the config file names none.
func DefaultUsers() map[string]string {
	return map[string]string{
		"admin": "secret",
		"user":  "password",
	}
}

// TLSEnabled reports whether both a certificate and a key are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

// ParseArgs builds Options from args (without the program name), an
// optional JSON config file and the environment read through getenv.
// Later sources win: flags, then the config file, then the environment.
func ParseArgs(args []string, getenv func(string) string, output io.Writer) (*Options, error) {
	options := &Options{}

	fs := flag.NewFlagSet("itemgate", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&options.RESTAddress, "a", "localhost:5000", "run REST listener on ip:port")
	fs.StringVar(&options.SOAPAddress, "s", "localhost:8001", "run SOAP listener on ip:port")
	fs.StringVar(&options.LogLevel, "l", "info", "log level")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to server TLS certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to server TLS key")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		data, err := os.ReadFile(options.Config)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error while reading config file: %w", err)
		default:
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if v := getenv("REST_ADDRESS"); v != "" {
		options.RESTAddress = v
	}
	if v := getenv("SOAP_ADDRESS"); v != "" {
		options.SOAPAddress = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		options.LogLevel = v
	}
	if v := getenv("TLS_CERT"); v != "" {
		options.TLSCert = v
	}
	if v := getenv("TLS_KEY"); v != "" {
		options.TLSKey = v
	}

	if len(options.Users) == 0 {
		options.Users = DefaultUsers()
	}
	if options.RESTAddress == options.SOAPAddress {
		return nil, fmt.Errorf("REST and SOAP listeners share address %q", options.RESTAddress)
	}
	return options, nil
}

// Parse parses the process's command-line flags and environment variables.
// It exits the process when the configuration is invalid.
func Parse() *Options {
	options, err := ParseArgs(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return options
}

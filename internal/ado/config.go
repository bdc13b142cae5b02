package ado

import (
	"os"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is the Azure DevOps Services host.
	DefaultBaseURL = "https://dev.azure.com"

	// APIVersion is the REST API version sent with every request.
	APIVersion = "7.1"

	// ResourceID is the Azure AD resource that issues Azure DevOps tokens.
	ResourceID = "499b84ac-1321-427f-aa17-267ca6975798"
)

// Config holds all configuration for the Azure DevOps transport.
type Config struct {
	BaseURL      string
	Organization string
	Project      string
	APIVersion   string
	TimeoutMs    int
	MaxRetries   int
	RetryBackoff time.Duration
	Token        string
	LogCalls     bool
}

// DefaultConfig returns a Config with sensible defaults for org/project.
func DefaultConfig(org, project string) Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Organization: org,
		Project:      project,
		APIVersion:   APIVersion,
		TimeoutMs:    30000,
		MaxRetries:   3,
		RetryBackoff: time.Second,
	}
}

// LoadConfig reads transport configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig(org, project string) Config {
	cfg := DefaultConfig(org, project)

	if v := os.Getenv("AZDO_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("AZDO_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("AZDO_LOG"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("AZDO_API_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("AZDO_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			cfg.MaxRetries = n
		}
	}

	return cfg
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

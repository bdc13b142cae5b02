package ado

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// TokenSource supplies the bearer token for REST calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token, e.g. a PAT exported as AZDO_TOKEN.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", errors.New("empty token")
	}
	return string(s), nil
}

// commandRunner runs an external command and returns its stdout.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// AzCLITokenSource obtains a token from `az account get-access-token` on first
// use and caches it for the life of the process. The token is never revoked.
type AzCLITokenSource struct {
	once  sync.Once
	token string
	err   error

	lookup func() (string, error)
	run    commandRunner
}

// NewAzCLITokenSource creates a TokenSource backed by the Azure CLI.
func NewAzCLITokenSource() *AzCLITokenSource {
	return &AzCLITokenSource{lookup: findAzCLI, run: runCommand}
}

func (s *AzCLITokenSource) Token(ctx context.Context) (string, error) {
	s.once.Do(func() {
		az, err := s.lookup()
		if err != nil {
			s.err = err
			return
		}
		out, err := s.run(ctx, az, "account", "get-access-token",
			"--resource", ResourceID, "--query", "accessToken", "-o", "tsv")
		if err != nil {
			s.err = fmt.Errorf("getting access token: %w", err)
			return
		}
		s.token = strings.TrimSpace(string(out))
		if s.token == "" {
			s.err = errors.New("getting access token: az returned an empty token")
		}
	})
	return s.token, s.err
}

// NewTokenSource prefers a configured token and falls back to the Azure CLI.
func NewTokenSource(cfg Config) TokenSource {
	if cfg.Token != "" {
		return StaticToken(cfg.Token)
	}
	return NewAzCLITokenSource()
}

func findAzCLI() (string, error) {
	if p, err := exec.LookPath("az"); err == nil {
		return p, nil
	}
	candidates := []string{
		`C:\Program Files (x86)\Microsoft SDKs\Azure\CLI2\wbin\az.cmd`,
		`C:\Program Files\Microsoft SDKs\Azure\CLI2\wbin\az.cmd`,
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "scoop", "apps", "azure-cli", "current", "bin", "az.cmd"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", ErrAzCLIMissing
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

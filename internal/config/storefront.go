package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// CatalogConfig locates the product catalog. Source is a file path or an http(s) URL.
type CatalogConfig struct {
	Source  string        `koanf:"source"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *CatalogConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  source: %s\n", c.Source))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *CatalogConfig) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("catalog source is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid catalog timeout: %v", c.Timeout)
	}
	return nil
}

// SessionConfig controls the per-browser cart sessions.
type SessionConfig struct {
	Cookie        string        `koanf:"cookie"`
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweepinterval"`
}

func (c *SessionConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Session ---\n")
	b.WriteString(fmt.Sprintf("  cookie: %s\n", c.Cookie))
	b.WriteString(fmt.Sprintf("  ttl: %s\n", c.TTL))
	b.WriteString(fmt.Sprintf("  sweepinterval: %s\n", c.SweepInterval))
	return b.String()
}

func (c *SessionConfig) Validate() error {
	if c.Cookie == "" {
		return fmt.Errorf("session cookie name is not configured")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("invalid session ttl: %v", c.TTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("invalid session sweep interval: %v", c.SweepInterval)
	}
	return nil
}

// AssetsConfig points at the directory served under /assets/. Empty disables it.
type AssetsConfig struct {
	Dir string `koanf:"dir"`
}

func (c *AssetsConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Assets ---\n")
	if c.Dir == "" {
		b.WriteString("  dir: <disabled>\n")
	} else {
		b.WriteString(fmt.Sprintf("  dir: %s\n", c.Dir))
	}
	return b.String()
}

func (c *AssetsConfig) Validate() error {
	if c.Dir == "" {
		return nil
	}
	info, err := os.Stat(c.Dir)
	if err != nil {
		return fmt.Errorf("assets dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("assets dir %s is not a directory", c.Dir)
	}
	return nil
}

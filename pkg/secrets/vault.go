// Package secrets hydrates the process environment from a HashiCorp Vault
// KV store before configuration is read. Vault keys become environment
// variables; existing variables win unless overwrite is requested, so local
// .env values stay authoritative in development.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config selects the Vault server and KV path to hydrate from.
type Config struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
	Overwrite bool
}

// Report summarizes one hydration pass for startup logging.
type Report struct {
	Enabled bool
	Path    string
	Loaded  int
	Skipped int
}

// FromEnv reads the VAULT_* variables. Hydration stays disabled unless
// VAULT_ENABLED is "true".
func FromEnv() Config {
	cfg := Config{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     envOr("VAULT_MOUNT", "secret"),
		Path:      os.Getenv("VAULT_PATH"),
		KVVersion: 2,
		Timeout:   5 * time.Second,
	}
	if v, err := strconv.Atoi(os.Getenv("VAULT_KV_VERSION")); err == nil && v > 0 {
		cfg.KVVersion = v
	}
	if ms, err := strconv.Atoi(os.Getenv("VAULT_TIMEOUT_MS")); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	cfg.Overwrite = strings.EqualFold(os.Getenv("VAULT_OVERWRITE"), "true")
	return cfg
}

// Hydrate fetches the KV document and exports its keys into the
// environment. A disabled config is a no-op.
func Hydrate(ctx context.Context, cfg Config) (Report, error) {
	report := Report{Enabled: cfg.Enabled, Path: cfg.Path}
	if !cfg.Enabled {
		return report, nil
	}
	if cfg.Addr == "" || cfg.Token == "" || cfg.Path == "" {
		return report, errors.New("vault hydration requires VAULT_ADDR, VAULT_TOKEN and VAULT_PATH")
	}

	data, err := fetchKV(ctx, cfg)
	if err != nil {
		return report, err
	}

	for key, value := range data {
		if !cfg.Overwrite && os.Getenv(key) != "" {
			report.Skipped++
			continue
		}
		if err := os.Setenv(key, asEnvString(value)); err != nil {
			return report, fmt.Errorf("failed to set %s from vault: %w", key, err)
		}
		report.Loaded++
	}
	return report, nil
}

func fetchKV(ctx context.Context, cfg Config) (map[string]interface{}, error) {
	segment := strings.TrimLeft(cfg.Path, "/")
	mount := strings.Trim(cfg.Mount, "/")
	url := fmt.Sprintf("%s/v1/%s/data/%s", strings.TrimRight(cfg.Addr, "/"), mount, segment)
	if cfg.KVVersion == 1 {
		url = fmt.Sprintf("%s/v1/%s/%s", strings.TrimRight(cfg.Addr, "/"), mount, segment)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Vault-Token", cfg.Token)
	if cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", cfg.Namespace)
	}

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vault fetch failed: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	// KV v2 nests the document one level deeper than v1.
	raw := payload.Data
	if cfg.KVVersion != 1 {
		var inner struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &inner); err != nil || inner.Data == nil {
			return nil, errors.New("vault response missing data for KV v2")
		}
		raw = inner.Data
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("vault response is not a KV document: %w", err)
	}
	return data, nil
}

func asEnvString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

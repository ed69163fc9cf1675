// Package secrets overlays environment variables with values from a
// HashiCorp Vault KV path, so the bot token and the service-account JSON
// never have to live in the deployment manifest.
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

// VaultConfig describes the Vault KV source.
type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
}

// LoadVaultConfigFromEnv reads the VAULT_* environment variables.
func LoadVaultConfigFromEnv() VaultConfig {
	mount := os.Getenv("VAULT_MOUNT")
	if mount == "" {
		mount = "secret"
	}
	kvVersion := 2
	if val := os.Getenv("VAULT_KV_VERSION"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			kvVersion = parsed
		}
	}
	timeout := 5 * time.Second
	if val := os.Getenv("VAULT_TIMEOUT_MS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			timeout = time.Duration(parsed) * time.Millisecond
		}
	}

	return VaultConfig{
		Enabled:   strings.EqualFold(os.Getenv("VAULT_ENABLED"), "true"),
		Addr:      os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Mount:     mount,
		Path:      os.Getenv("VAULT_PATH"),
		KVVersion: kvVersion,
		Timeout:   timeout,
	}
}

// ApplyVaultSecrets fetches the KV path and exports each pair as an
// environment variable. Variables already set in the environment win.
// Returns the number of variables loaded.
func ApplyVaultSecrets(ctx context.Context, cfg VaultConfig) (int, error) {
	if !cfg.Enabled {
		return 0, nil
	}
	if cfg.Addr == "" || cfg.Token == "" || cfg.Path == "" {
		return 0, errors.New("vault configuration incomplete (VAULT_ADDR, VAULT_TOKEN, VAULT_PATH)")
	}

	url, err := buildVaultURL(cfg.Addr, cfg.Mount, cfg.Path, cfg.KVVersion)
	if err != nil {
		return 0, err
	}

	client := &http.Client{Timeout: cfg.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("X-Vault-Token", cfg.Token)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("vault fetch failed: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, err
	}
	data, err := extractVaultData(payload, cfg.KVVersion)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for key, value := range data {
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, stringifyVaultValue(value)); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

func buildVaultURL(addr, mount, path string, kvVersion int) (string, error) {
	addr = strings.TrimRight(addr, "/")
	mount = strings.Trim(mount, "/")
	path = strings.TrimLeft(path, "/")
	if addr == "" || mount == "" || path == "" {
		return "", errors.New("vault address, mount, and path must be set")
	}
	if kvVersion == 1 {
		return fmt.Sprintf("%s/v1/%s/%s", addr, mount, path), nil
	}
	return fmt.Sprintf("%s/v1/%s/data/%s", addr, mount, path), nil
}

func extractVaultData(payload map[string]interface{}, kvVersion int) (map[string]interface{}, error) {
	if kvVersion == 1 {
		if data, ok := payload["data"].(map[string]interface{}); ok {
			return data, nil
		}
		return nil, errors.New("vault response missing data for KV v1")
	}
	if data, ok := payload["data"].(map[string]interface{}); ok {
		if inner, ok := data["data"].(map[string]interface{}); ok {
			return inner, nil
		}
	}
	return nil, errors.New("vault response missing data for KV v2")
}

func stringifyVaultValue(value interface{}) string {
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

// Package config loads titlechain configuration from the environment, with an
// optional TOML project file. Absent configuration never fails: every option
// has a documented default matching the public PRGI deployment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Defaults for the external collaborators.
const (
	DefaultVerifierURL     = "http://127.0.0.1:8000"
	DefaultContractAddress = "0x60Ceaa19201e1C6C19b5828b4Dd5C450E6148DF9"
	DefaultChainID         = "0xaa36a7" // Sepolia
	DefaultRPCURL          = "https://ethereum-sepolia-rpc.publicnode.com"
)

// Config holds all configuration for the client and gateway.
type Config struct {
	Verifier  VerifierConfig
	Registry  RegistryConfig
	Server    ServerConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
}

// VerifierConfig holds settings for the remote verification engine.
type VerifierConfig struct {
	BaseURL        string
	TimeoutSeconds int
	// MinRulesetVersion, when set, flags verdicts produced by an older
	// ruleset than this semver as stale lineage.
	MinRulesetVersion string
}

// RegistryConfig holds settings for the on-chain title registry.
type RegistryConfig struct {
	ContractAddress    string
	ChainID            string // hex, as reported by wallet providers
	RPCURL             string // public read-only fallback endpoint
	ConfirmPollSeconds int
	ConfirmTimeoutSecs int
}

// ServerConfig holds HTTP gateway configuration.
type ServerConfig struct {
	Port           int
	Host           string
	ReadTimeout    int // seconds
	WriteTimeout   int // seconds
	IdleTimeout    int // seconds
	MetricsEnabled bool
	// TrustProxy enables X-Forwarded-For handling for peers listed in
	// TrustedProxies (IPs or CIDR ranges).
	TrustProxy     bool
	TrustedProxies []string
	// APIKey, when set, is required on mutating routes. Empty leaves the
	// gateway open, the default for a localhost deployment.
	APIKey string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string
	Format string // "text" or "json"
}

// RateLimitConfig holds verify-endpoint rate limiting settings.
// Defaults mirror the verification engine's own anti-abuse window
// (5 requests per 10 seconds per IP).
type RateLimitConfig struct {
	Enabled       bool
	MaxRequests   int
	WindowSeconds int
}

// fileConfig is the shape of an optional titlechain.toml project file.
// Environment variables take precedence over file values.
type fileConfig struct {
	VerifierURL     string `toml:"verifier_url"`
	ContractAddress string `toml:"contract_address"`
	ChainID         string `toml:"chain_id"`
	RPCURL          string `toml:"rpc_url"`
}

// Load loads configuration from environment variables, layered over an
// optional titlechain.toml in the working directory.
func Load() (*Config, error) {
	file := loadProjectFile()

	cfg := &Config{
		Verifier: VerifierConfig{
			BaseURL:           getEnv("TITLECHAIN_VERIFIER_URL", withDefault(file.VerifierURL, DefaultVerifierURL)),
			TimeoutSeconds:    getEnvInt("TITLECHAIN_VERIFIER_TIMEOUT", 30),
			MinRulesetVersion: getEnv("TITLECHAIN_MIN_RULESET_VERSION", ""),
		},
		Registry: RegistryConfig{
			ContractAddress:    getEnv("TITLECHAIN_CONTRACT_ADDRESS", withDefault(file.ContractAddress, DefaultContractAddress)),
			ChainID:            getEnv("TITLECHAIN_CHAIN_ID", withDefault(file.ChainID, DefaultChainID)),
			RPCURL:             getEnv("TITLECHAIN_RPC_URL", withDefault(file.RPCURL, DefaultRPCURL)),
			ConfirmPollSeconds: getEnvInt("TITLECHAIN_CONFIRM_POLL_SECONDS", 2),
			ConfirmTimeoutSecs: getEnvInt("TITLECHAIN_CONFIRM_TIMEOUT_SECONDS", 180),
		},
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 8080),
			Host:           getEnv("HOST", "0.0.0.0"),
			ReadTimeout:    getEnvInt("SERVER_READ_TIMEOUT", 30),
			// The write timeout must outlast the attestation confirm
			// timeout; the register response is held open until the
			// transaction settles.
			WriteTimeout:   getEnvInt("SERVER_WRITE_TIMEOUT", 300),
			IdleTimeout:    getEnvInt("SERVER_IDLE_TIMEOUT", 120),
			MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
			TrustProxy:     getEnvBool("TRUST_PROXY", false),
			TrustedProxies: getEnvList("TRUSTED_PROXIES"),
			APIKey:         getEnv("GATEWAY_API_KEY", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvBool("RATE_LIMIT_ENABLED", true),
			MaxRequests:   getEnvInt("RATE_LIMIT_MAX_REQUESTS", 5),
			WindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 10),
		},
	}

	cfg.Verifier.BaseURL = strings.TrimSuffix(cfg.Verifier.BaseURL, "/")

	return cfg, nil
}

// loadProjectFile reads titlechain.toml if present. A missing or unreadable
// file is not an error; a present-but-malformed file is reported on stderr and
// otherwise ignored so a bad file cannot take the client down.
func loadProjectFile() fileConfig {
	var file fileConfig
	data, err := os.ReadFile("titlechain.toml")
	if err != nil {
		return file
	}
	if _, err := toml.Decode(string(data), &file); err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring malformed titlechain.toml: %v\n", err)
		return fileConfig{}
	}
	return file
}

func withDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var entries []string
	for _, entry := range strings.Split(value, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

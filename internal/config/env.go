package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

const (
	// StoreFile keeps the registry as a single JSON document on disk
	StoreFile = "file"
	// StoreBadger keeps the registry in a keyed badger database
	StoreBadger = "badger"

	// ProviderCDP delegates custody to the CDP platform API
	ProviderCDP = "cdp"
	// ProviderSolana generates and seals keys locally and talks to a Solana RPC node
	ProviderSolana = "solana"
)

// Config contains all configuration parameters for the application.
// Note: the Solana seed passphrase is prompted at runtime and stored in memory - use GetPassphraseBytes()
type Config struct {
	Port                string `envconfig:"PORT" default:"8000"`
	EnableWalletActions bool   `envconfig:"ENABLE_WALLET_ACTIONS" default:"false"`
	LogLevel            string `envconfig:"LOG_LEVEL" default:"info"`

	KnowledgeFile     string `envconfig:"KNOWLEDGE_FILE" default:"models/knowledge.json"`
	DefiLlamaURL      string `envconfig:"DEFILLAMA_URL" default:"https://yields.llama.fi"`
	DefiLlamaCoinsURL string `envconfig:"DEFILLAMA_COINS_URL" default:"https://coins.llama.fi"`

	RegistryStore     string `envconfig:"REGISTRY_STORE" default:"file"`
	RegistryFilePath  string `envconfig:"REGISTRY_FILE_PATH" default:"./data/wallet.json"`
	RegistryBadgerDir string `envconfig:"REGISTRY_BADGER_DIR" default:"./data/registry"`

	NetworkID               string `envconfig:"NETWORK_ID" default:"base-sepolia"`
	CustodyProvider         string `envconfig:"CUSTODY_PROVIDER" default:"cdp"`
	CDPAPIKeyName           string `envconfig:"CDP_API_KEY_NAME"`
	CDPAPIKeyPrivateKey     string `envconfig:"CDP_API_KEY_PRIVATE_KEY"`
	CDPBaseURL              string `envconfig:"CDP_BASE_URL" default:"https://api.cdp.coinbase.com/platform"`
	CDPTimeoutSeconds       int    `envconfig:"CDP_TIMEOUT_SECONDS" default:"30"`
	CDPRequestsPerSecond    int    `envconfig:"CDP_REQUESTS_PER_SECOND" default:"5"`
	SolanaRPCURL            string `envconfig:"SOLANA_RPC_URL" default:"https://api.devnet.solana.com"`
	FaucetCooldown          int    `envconfig:"FAUCET_COOLDOWN_MINUTES" default:"1"`
	StrictAddressValidation bool   `envconfig:"STRICT_ADDRESS_VALIDATION" default:"false"`

	OpenAIAPIKey       string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL      string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	LLMModel           string `envconfig:"LLM_MODEL" default:"gpt-4o-mini-2024-07-18"`
	EmbeddingModel     string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`
	LLMTimeoutSeconds  int    `envconfig:"LLM_TIMEOUT_SECONDS" default:"60"`
	AgentMaxWorkers    int    `envconfig:"AGENT_MAX_WORKERS" default:"3"`
	AgentMaxIterations int    `envconfig:"AGENT_MAX_ITERATIONS" default:"10"`
	AgentMaxThreads    int    `envconfig:"AGENT_MAX_THREADS" default:"1000"`
	RetrieverTopK      int    `envconfig:"RETRIEVER_TOP_K" default:"4"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// Validate checks the values that envconfig cannot check on its own.
func (c *Config) Validate() error {
	switch c.RegistryStore {
	case StoreFile:
		if strings.TrimSpace(c.RegistryFilePath) == "" {
			return errors.New("REGISTRY_FILE_PATH must be set for the file store")
		}
	case StoreBadger:
		if strings.TrimSpace(c.RegistryBadgerDir) == "" {
			return errors.New("REGISTRY_BADGER_DIR must be set for the badger store")
		}
	default:
		return fmt.Errorf("unknown REGISTRY_STORE %q, must be %s or %s", c.RegistryStore, StoreFile, StoreBadger)
	}

	switch c.CustodyProvider {
	case ProviderCDP, ProviderSolana:
	default:
		return fmt.Errorf("unknown CUSTODY_PROVIDER %q, must be %s or %s", c.CustodyProvider, ProviderCDP, ProviderSolana)
	}

	if c.AgentMaxWorkers <= 0 {
		return errors.New("AGENT_MAX_WORKERS must be positive")
	}
	if c.FaucetCooldown < 0 {
		return errors.New("FAUCET_COOLDOWN_MINUTES must not be negative")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// WalletActionsEnabled reports whether the wallet-enabled variant is served
func WalletActionsEnabled() bool {
	return Get().EnableWalletActions
}

// GetFaucetCooldown returns the per-address faucet cooldown
func GetFaucetCooldown() time.Duration {
	return time.Duration(Get().FaucetCooldown) * time.Minute
}

// GetCDPTimeout returns the timeout applied to every custody API call
func GetCDPTimeout() time.Duration {
	return time.Duration(Get().CDPTimeoutSeconds) * time.Second
}

// GetLLMTimeout returns the timeout applied to every model API call
func GetLLMTimeout() time.Duration {
	return time.Duration(Get().LLMTimeoutSeconds) * time.Second
}

var passphraseBytes []byte

// PromptForPassphrase prompts the operator for the seed passphrase in the terminal.
// The passphrase is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassphrase() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal: run the app interactively to enter the seed passphrase")
	}
	fmt.Fprint(os.Stderr, "Enter seed passphrase: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	if len(raw) == 0 {
		return errors.New("passphrase cannot be empty")
	}

	passphraseBytes = make([]byte, len(raw))
	copy(passphraseBytes, raw)
	clear(raw)
	return nil
}

// GetPassphraseBytes returns a copy of the passphrase stored by PromptForPassphrase.
// Caller must zero the returned slice after use.
func GetPassphraseBytes() ([]byte, error) {
	if len(passphraseBytes) == 0 {
		return nil, errors.New("passphrase not set: call PromptForPassphrase at startup")
	}
	out := make([]byte, len(passphraseBytes))
	copy(out, passphraseBytes)
	return out, nil
}

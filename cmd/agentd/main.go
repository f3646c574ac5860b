package main

import (
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/AlexZinkM/yield-agent/docs"
	"github.com/AlexZinkM/yield-agent/internal/config"
	"github.com/AlexZinkM/yield-agent/internal/custody"
	"github.com/AlexZinkM/yield-agent/internal/registry"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	// .env is optional, real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to load .env file")
	}

	app := cli.NewApp()
	app.Name = "agentd"
	app.Usage = "DeFi yield agent with custodial wallets"
	app.Before = setup
	app.Action = serveAction
	app.Commands = append(
		app.Commands,
		&serve,
		&fetchYields,
		&walletCmd,
	)

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads the configuration and the log level before any command runs
func setup(*cli.Context) error {
	if err := config.Init(); err != nil {
		return err
	}

	level, err := log.ParseLevel(config.Get().LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

// openStore opens the registry store selected by REGISTRY_STORE
func openStore(cfg *config.Config) (registry.Store, error) {
	switch cfg.RegistryStore {
	case config.StoreBadger:
		return registry.NewBadgerStore(cfg.RegistryBadgerDir, log.WithField("component", "badger"))
	default:
		return registry.NewFileStore(cfg.RegistryFilePath)
	}
}

// newProvider builds the custody provider selected by CUSTODY_PROVIDER. The
// solana provider prompts for the seed passphrase.
func newProvider(cfg *config.Config) (custody.Provider, error) {
	switch cfg.CustodyProvider {
	case config.ProviderSolana:
		if err := config.PromptForPassphrase(); err != nil {
			return nil, err
		}
		password, err := config.GetPassphraseBytes()
		if err != nil {
			return nil, err
		}
		defer clear(password)
		return custody.NewSolanaProvider(cfg.SolanaRPCURL, password)
	default:
		return custody.NewCDPProvider(custody.Config{
			APIKeyName:        cfg.CDPAPIKeyName,
			APIKeyPrivateKey:  cfg.CDPAPIKeyPrivateKey,
			BaseURL:           cfg.CDPBaseURL,
			Timeout:           config.GetCDPTimeout(),
			RequestsPerSecond: cfg.CDPRequestsPerSecond,
		})
	}
}

func printRespJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

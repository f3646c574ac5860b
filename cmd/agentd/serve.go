package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexZinkM/yield-agent/internal/agent"
	"github.com/AlexZinkM/yield-agent/internal/api"
	"github.com/AlexZinkM/yield-agent/internal/client"
	"github.com/AlexZinkM/yield-agent/internal/config"
	"github.com/AlexZinkM/yield-agent/internal/handler"
	"github.com/AlexZinkM/yield-agent/internal/metrics"
	"github.com/AlexZinkM/yield-agent/internal/registry"
	"github.com/AlexZinkM/yield-agent/wallet"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 15 * time.Second

var serve = cli.Command{
	Name:   "serve",
	Usage:  "run the HTTP API (default command)",
	Action: serveAction,
}

func serveAction(c *cli.Context) error {
	cfg := config.Get()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	llm, err := client.NewOpenAIClient(client.OpenAIConfig{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		ChatModel:      cfg.LLMModel,
		EmbeddingModel: cfg.EmbeddingModel,
		Timeout:        config.GetLLMTimeout(),
	})
	if err != nil {
		return err
	}

	var (
		wallets       agent.WalletOperations
		walletHandler *handler.WalletHandler
	)
	if config.WalletActionsEnabled() {
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		provider, err := newProvider(cfg)
		if err != nil {
			return fmt.Errorf("failed to create custody provider: %w", err)
		}

		svc := wallet.NewService(registry.New(store, provider, cfg.NetworkID), wallet.Options{
			FaucetCooldown:          config.GetFaucetCooldown(),
			StrictAddressValidation: cfg.StrictAddressValidation,
			Prices:                  client.NewDefiLlamaClient(cfg.DefiLlamaURL, cfg.DefiLlamaCoinsURL),
		})
		wallets = svc
		walletHandler = handler.NewWalletHandler(svc)

		log.WithField("provider", cfg.CustodyProvider).
			WithField("store", cfg.RegistryStore).
			WithField("network_id", cfg.NetworkID).
			Info("wallet actions enabled")
	}

	a := agent.New(agent.Config{
		KnowledgeFile: cfg.KnowledgeFile,
		MaxWorkers:    cfg.AgentMaxWorkers,
		MaxIterations: cfg.AgentMaxIterations,
		TopK:          cfg.RetrieverTopK,
		MaxThreads:    cfg.AgentMaxThreads,
	}, llm, wallets)
	if err := a.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Register(promReg); err != nil {
		return err
	}

	srv := &http.Server{
		Addr: ":" + config.GetPort(),
		Handler: api.SetupRouter(api.Deps{
			Agent:    handler.NewAgentHandler(a),
			Wallet:   walletHandler,
			Gatherer: promReg,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server starting on %s", srv.Addr)
		log.Infof("Swagger UI available at http://localhost%s/swagger/index.html", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

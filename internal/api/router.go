package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AlexZinkM/yield-agent/internal/handler"
	"github.com/AlexZinkM/yield-agent/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Deps are the handlers served by the router. Wallet is nil when wallet
// actions are disabled.
type Deps struct {
	Agent    *handler.AgentHandler
	Wallet   *handler.WalletHandler
	Gatherer prometheus.Gatherer
}

// SetupRouter sets up router with handlers
func SetupRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Metrics
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Agent endpoints
	mux.HandleFunc("/query", deps.Agent.Query)
	mux.HandleFunc("/health", deps.Agent.Health)

	// Wallet endpoints
	if deps.Wallet != nil {
		mux.HandleFunc("/wallet", deps.Wallet.Lookup)
		mux.HandleFunc("/wallet/create", deps.Wallet.Create)
		mux.HandleFunc("/wallet/fund", deps.Wallet.Fund)
		mux.HandleFunc("/wallet/mint", deps.Wallet.Mint)
		mux.HandleFunc("/wallet/swap", deps.Wallet.Swap)
		mux.HandleFunc("/wallet/stake", deps.Wallet.Stake)
		mux.HandleFunc("/wallet/balance", deps.Wallet.Balance)
	}

	return instrument(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request counts and latencies per registered route
func instrument(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, pattern := mux.Handler(r)
		if pattern == "" {
			pattern = "unmatched"
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		mux.ServeHTTP(rec, r)

		metrics.HTTPDuration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
		metrics.HTTPRequests.WithLabelValues(pattern, strconv.Itoa(rec.status)).Inc()
	})
}

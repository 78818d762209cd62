package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/rak-realm/ghostlink/internal/core/service"
	"github.com/rak-realm/ghostlink/internal/server/httpserver/handler"
	"github.com/rak-realm/ghostlink/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Links is the link session service.
	Links *service.LinkService

	// Metrics provides the /metrics endpoint and request histograms.
	Metrics *metric.Metrics

	// Logger for request logging.
	Logger *slog.Logger

	// AdminToken guards /qr/cleanup when non-empty.
	AdminToken string

	// RatePerSecond is the per-IP sustained rate. Zero disables.
	RatePerSecond float64

	// RateBurst is the per-IP burst allowance.
	RateBurst int

	// CORSOrigin is the allowed origin ("*" = any, "" = disabled).
	CORSOrigin string
}

// NewRouter creates and configures the HTTP router with all routes and
// middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	h := handler.New(cfg.Links, cfg.Logger)

	// Linking endpoints get the full chain.
	// Order: Recover -> CORS -> RequestID -> RateLimit -> Audit -> Handler
	linkChain := func(endpoint http.HandlerFunc) http.Handler {
		middlewares := []Middleware{
			Recover(cfg.Logger),
			CORS(cfg.CORSOrigin),
			RequestID(),
		}
		if cfg.RatePerSecond > 0 {
			middlewares = append(middlewares, RateLimit(cfg.RatePerSecond, cfg.RateBurst))
		}
		middlewares = append(middlewares, Audit(cfg.Logger, cfg.Metrics))
		return Chain(endpoint, middlewares...)
	}

	// System endpoints skip rate limiting and CORS.
	systemChain := func(endpoint http.HandlerFunc) http.Handler {
		return Chain(endpoint, Recover(cfg.Logger), RequestID())
	}

	mux := http.NewServeMux()

	mux.Handle("POST /pair", linkChain(h.HandlePair))
	mux.Handle("GET /qr/generate", linkChain(h.HandleQRGenerate))
	mux.Handle("GET /qr/status/{id}", linkChain(h.HandleQRStatus))

	// The maintenance sweep sits behind the admin token.
	mux.Handle("POST /qr/cleanup", Chain(
		http.HandlerFunc(h.HandleQRCleanup),
		Recover(cfg.Logger),
		RequestID(),
		AdminToken(cfg.AdminToken),
		Audit(cfg.Logger, cfg.Metrics),
	))

	mux.Handle("GET /health", systemChain(h.HandleHealth))
	mux.Handle("GET /status", systemChain(h.HandleStatus))
	mux.Handle("GET /api", systemChain(h.HandleAPI))

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(
			cfg.Metrics.Handler(),
			Recover(cfg.Logger),
		))
	}

	return mux
}

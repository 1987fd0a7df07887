package api

import (
	"context"
	"database/sql"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/logger"
)

const tracerName = "github.com/ignite/newsletter/internal/api"

// Subscriber is the ingestion use case the HTTP layer drives.
type Subscriber interface {
	Subscribe(ctx context.Context, form domain.SubscriptionForm) (*domain.Subscription, error)
}

// RateLimiter decides whether a client may submit another form.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Deps carries everything the router needs. DB, Redis and Limiter may be
// nil; Logger, Metrics and TracerProvider fall back to package defaults.
type Deps struct {
	Subscriptions  Subscriber
	DB             *sql.DB
	Redis          *redis.Client
	Limiter        RateLimiter
	Metrics        *Metrics
	Logger         *logger.Logger
	TracerProvider trace.TracerProvider
	AllowedOrigins []string
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []netip.Prefix
}

func (d *Deps) withDefaults() {
	if d.Logger == nil {
		d.Logger = logger.Default()
	}
	if d.Metrics == nil {
		d.Metrics = NewMetrics()
	}
	if d.TracerProvider == nil {
		d.TracerProvider = otel.GetTracerProvider()
	}
	if len(d.AllowedOrigins) == 0 {
		d.AllowedOrigins = []string{"*"}
	}
}

// NewRouter configures all routes and wraps them in the request span.
func NewRouter(d Deps) http.Handler {
	d.withDefaults()

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(trustedRealIP(d.TrustedProxies))
	r.Use(middleware.Recoverer)

	// Landing pages post the form from their own origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	health := NewHealthChecker(d.DB, d.Redis)
	r.Get("/health_check", health.HandleLiveness)
	r.Get("/health/ready", health.HandleReadiness)

	subs := &SubscriptionsHandler{
		svc:     d.Subscriptions,
		log:     d.Logger,
		tracer:  d.TracerProvider.Tracer(tracerName),
		metrics: d.Metrics,
	}
	r.With(throttle(d.Limiter, d.Metrics, d.Logger)).Post("/subscriptions", subs.Subscribe)

	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	return otelhttp.NewHandler(r, "http.server",
		otelhttp.WithTracerProvider(d.TracerProvider),
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	)
}

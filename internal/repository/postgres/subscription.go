package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/service/subscription"
)

const tracerName = "github.com/ignite/newsletter/internal/repository/postgres"

const insertSubscriptionSQL = `
	INSERT INTO subscriptions (id, email, name, subscribed_at)
	VALUES ($1, $2, $3, $4)
`

// SubscriptionRepo implements subscription.Repository against PostgreSQL.
type SubscriptionRepo struct {
	db           *sql.DB
	queryTimeout time.Duration
	tracer       trace.Tracer
	insertTimer  prometheus.Observer
}

// Option customises a SubscriptionRepo.
type Option func(*SubscriptionRepo)

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *SubscriptionRepo) { r.tracer = tp.Tracer(tracerName) }
}

// WithInsertObserver records the duration of every insert statement,
// successful or not, in seconds.
func WithInsertObserver(o prometheus.Observer) Option {
	return func(r *SubscriptionRepo) { r.insertTimer = o }
}

// NewSubscriptionRepo creates a Postgres-backed subscription repository.
// queryTimeout bounds each insert; zero means no bound beyond the pool's.
func NewSubscriptionRepo(db *sql.DB, queryTimeout time.Duration, opts ...Option) *SubscriptionRepo {
	r := &SubscriptionRepo{
		db:           db,
		queryTimeout: queryTimeout,
		tracer:       otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert writes one subscriptions row. The statement runs on a context
// detached from the caller's cancellation so a client hanging up does not
// abort a started insert; queryTimeout still applies.
func (r *SubscriptionRepo) Insert(ctx context.Context, s domain.NewSubscriber) (*domain.Subscription, error) {
	ctx, span := r.tracer.Start(ctx, "Saving new subscriber details in the database",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "INSERT"),
			attribute.String("db.sql.table", "subscriptions"),
		),
	)
	defer span.End()

	ctx = context.WithoutCancel(ctx)
	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	id := uuid.New()
	row := domain.Subscription{
		ID:           id.String(),
		Email:        s.Email.String(),
		Name:         s.Name.String(),
		SubscribedAt: time.Now().UTC(),
	}

	start := time.Now()
	_, err := r.db.ExecContext(ctx, insertSubscriptionSQL, id, row.Email, row.Name, row.SubscribedAt)
	if r.insertTimer != nil {
		r.insertTimer.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		class := classifyError(err)
		if ctx.Err() != nil {
			// Drivers report an expired deadline in their own words.
			class = classifyError(ctx.Err())
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		span.SetAttributes(attribute.String("error.class", class))
		return nil, &subscription.StorageError{Op: "insert subscriber", Class: class, Err: err}
	}

	span.SetAttributes(attribute.String("subscriber.id", row.ID))
	return &row, nil
}

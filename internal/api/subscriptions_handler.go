package api

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/httputil"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/service/subscription"
)

// SubscriptionsHandler turns form submissions into stored subscribers.
type SubscriptionsHandler struct {
	svc     Subscriber
	log     *logger.Logger
	tracer  trace.Tracer
	metrics *Metrics
}

// Subscribe handles POST /subscriptions.
//
//	200 subscriber recorded
//	400 body malformed, field missing, or a value failed validation
//	500 the store could not record the subscriber
func (h *SubscriptionsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Adding a new subscriber")
	defer span.End()

	fields, err := httputil.DecodeForm(w, r, "name", "email")
	// Whatever was submitted goes on the span, even when a key is missing.
	span.SetAttributes(
		attribute.String("subscriber_email", r.PostForm.Get("email")),
		attribute.String("subscriber_name", r.PostForm.Get("name")),
	)
	if err != nil {
		span.SetStatus(codes.Error, "malformed form")
		h.metrics.IncrementOutcome(outcomeInvalid)
		h.log.WarnContext(ctx, "rejected subscription form", "reason", err.Error())
		httputil.BadRequest(w)
		return
	}

	form := domain.SubscriptionForm{Name: fields["name"], Email: fields["email"]}
	h.log.InfoContext(ctx, "adding a new subscriber",
		"subscriber_email", form.Email, "subscriber_name", form.Name)

	sub, err := h.svc.Subscribe(ctx, form)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		reason := err.Error()
		if errors.As(err, &ve) {
			reason = ve.Field + ": " + ve.Reason
		}
		span.SetStatus(codes.Error, "invalid subscriber")
		span.SetAttributes(attribute.String("validation.reason", reason))
		h.metrics.IncrementOutcome(outcomeInvalid)
		h.log.WarnContext(ctx, "rejected subscriber", "reason", reason)
		httputil.BadRequest(w)
		return
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failure")
		h.metrics.IncrementOutcome(outcomeStorageError)
		var logFields []interface{}
		var se *subscription.StorageError
		if errors.As(err, &se) {
			logFields = append(logFields, "class", se.Class)
		}
		httputil.InternalError(w, r.WithContext(ctx), h.log, err, logFields...)
		return
	}

	h.metrics.IncrementOutcome(outcomeOK)
	h.log.InfoContext(ctx, "new subscriber details have been saved", "id", sub.ID)
	httputil.OK(w)
}

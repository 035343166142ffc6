package app

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"quiz-reward-service/internal/domain"
	"quiz-reward-service/internal/metrics"
)

// Telemetry bundles the logger, counters and tracer a service reports through.
// Zero fields fall back to no-op or private implementations.
type Telemetry struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
}

func (t Telemetry) withDefaults() Telemetry {
	if t.Logger == nil {
		t.Logger = zap.NewNop()
	}
	if t.Metrics == nil {
		t.Metrics = metrics.New()
	}
	if t.Tracer == nil {
		t.Tracer = otel.Tracer("quiz-reward-service")
	}
	return t
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// resolveProfile never fails; unknown users get a placeholder name.
func resolveProfile(ctx context.Context, ids IdentityResolver, userID string) domain.Profile {
	fallback := domain.Profile{UserID: userID, Name: domain.UnknownUserName, Kind: domain.KindOf(userID)}
	if ids == nil {
		return fallback
	}
	p, err := ids.Profile(ctx, userID)
	if err != nil {
		return fallback
	}
	if p.Name == "" {
		p.Name = domain.UnknownUserName
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	return p
}

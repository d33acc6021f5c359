package auth

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noman2111ni/Retail-Managment-System/internal/domain/shared"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/apiclient"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/logger"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/metrics"
)

const tracerName = "github.com/noman2111ni/Retail-Managment-System/internal/application/auth"

// RequestFunc issues one remote call with the given access token.
type RequestFunc func(ctx context.Context, access string) error

// Authenticator runs remote calls with the session's access token and
// recovers from a single token expiry per call.
type Authenticator struct {
	session     *Session
	api         *apiclient.Client
	refreshPath string
	group       singleflight.Group
	log         *zap.Logger
	metrics     *metrics.Recorder
	tracer      trace.Tracer
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *Authenticator) { a.log = log.Named("auth") }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(a *Authenticator) { a.metrics = m }
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *Authenticator) { a.tracer = tp.Tracer(tracerName) }
}

// NewAuthenticator creates an Authenticator that refreshes at refreshPath.
func NewAuthenticator(session *Session, api *apiclient.Client, refreshPath string, opts ...Option) *Authenticator {
	a := &Authenticator{
		session:     session,
		api:         api,
		refreshPath: refreshPath,
		log:         zap.NewNop(),
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Session returns the session the Authenticator reads tokens from.
func (a *Authenticator) Session() *Session {
	return a.session
}

// Do calls fn with the current access token. When fn fails with the
// token-invalid signal and a refresh token is held, the token is refreshed
// once and fn is called once more; that second result is final. Any other
// error is returned unchanged.
func (a *Authenticator) Do(ctx context.Context, fn RequestFunc) error {
	creds := a.session.Current()

	err := fn(ctx, creds.Access)
	if err == nil || !apiclient.IsTokenInvalid(err) {
		return err
	}
	if creds.Refresh == "" {
		logger.WithTraceContext(ctx, a.log).Debug("Access token rejected and no refresh token held")
		return err
	}

	access, err := a.refresh(ctx, creds.Access)
	if err != nil {
		return err
	}

	return fn(ctx, access)
}

// refresh returns an access token newer than stale. Callers that expire
// together share one refresh call; a caller whose stale token was already
// replaced reuses the replacement.
func (a *Authenticator) refresh(ctx context.Context, stale string) (string, error) {
	current := a.session.Current()
	if current.Access != "" && current.Access != stale {
		a.metrics.ObserveRefresh(metrics.RefreshSkipped)
		return current.Access, nil
	}
	if current.Refresh == "" {
		return "", &ReauthError{Cause: shared.ErrNotAuthenticated}
	}

	// The shared call must not die with whichever caller started it.
	ch := a.group.DoChan(current.Refresh, func() (any, error) {
		return a.exchange(context.WithoutCancel(ctx), current)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// exchange trades the refresh token for a new access token and installs it.
func (a *Authenticator) exchange(ctx context.Context, creds Credentials) (string, error) {
	ctx, span := a.tracer.Start(ctx, "auth.refresh")
	defer span.End()

	log := logger.WithTraceContext(ctx, a.log)

	resp, err := a.api.Post(ctx, a.refreshPath, "", refreshRequest{Refresh: creds.Refresh})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh failed")

		if _, rejected := apiclient.AsAPIError(err); rejected {
			a.metrics.ObserveRefresh(metrics.RefreshRejected)
			log.Warn("Refresh token rejected, login required", zap.Error(err))
			if _, cerr := a.session.clearIfRefresh(ctx, creds.Refresh); cerr != nil {
				log.Error("Failed to clear session", zap.Error(cerr))
			}
		} else {
			a.metrics.ObserveRefresh(metrics.RefreshFailed)
			log.Warn("Token refresh failed", zap.Error(err))
		}
		return "", &ReauthError{Cause: err}
	}

	var pair Credentials
	if err := apiclient.DecodeJSON(resp, &pair); err != nil {
		a.metrics.ObserveRefresh(metrics.RefreshFailed)
		return "", &ReauthError{Cause: err}
	}
	if pair.Access == "" {
		a.metrics.ObserveRefresh(metrics.RefreshFailed)
		return "", &ReauthError{Cause: errors.New("refresh response carries no access token")}
	}

	swapped, err := a.session.SwapAccess(ctx, creds.Access, pair.Access, pair.Refresh)
	if err != nil {
		a.metrics.ObserveRefresh(metrics.RefreshFailed)
		return "", fmt.Errorf("storing refreshed token: %w", err)
	}
	if !swapped {
		// A login replaced the session while the refresh was in flight.
		a.metrics.ObserveRefresh(metrics.RefreshSkipped)
		return a.session.Current().Access, nil
	}

	a.metrics.ObserveRefresh(metrics.RefreshSucceeded)
	log.Info("Access token refreshed", zap.Bool("refresh_rotated", pair.Refresh != ""))
	return pair.Access, nil
}

package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"mockinterview/ai/internal/models"
)

const (
	OpQuestion   = "question"
	OpEvaluation = "evaluation"
)

// Observer receives one call per provider attempt.
type Observer interface {
	ObserveCall(provider, operation, outcome string, elapsed time.Duration)
	ObserveFallback(operation, reason string)
}

type nopObserver struct{}

func (nopObserver) ObserveCall(string, string, string, time.Duration) {}
func (nopObserver) ObserveFallback(string, string)                    {}

type BreakerSettings struct {
	// consecutive remote failures before the breaker opens
	MaxFailures uint32
	// how long the breaker stays open before probing again
	OpenTimeout time.Duration
}

type TieredOptions struct {
	Breaker  BreakerSettings
	Observer Observer
	Logger   *zap.Logger
	// share of the remaining deadline kept back for the fallback tier
	Reserve float64
}

// Tiered sends each call to the remote provider and, when that fails for any
// reason, makes exactly one attempt against the fallback provider.
type Tiered struct {
	remote   Provider
	fallback Provider
	breaker  *gobreaker.CircuitBreaker
	observer Observer
	logger   *zap.Logger
	reserve  float64
}

func NewTiered(remote, fallback Provider, opts TieredOptions) *Tiered {
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Reserve <= 0 || opts.Reserve >= 1 {
		opts.Reserve = 0.1
	}
	maxFailures := opts.Breaker.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	logger := opts.Logger
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    remote.GetProviderName(),
		Timeout: opts.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// a caller that went away says nothing about the remote's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Remote provider circuit changed state",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Tiered{
		remote:   remote,
		fallback: fallback,
		breaker:  breaker,
		observer: opts.Observer,
		logger:   opts.Logger,
		reserve:  opts.Reserve,
	}
}

func (t *Tiered) GetProviderName() string {
	return t.remote.GetProviderName() + "+" + t.fallback.GetProviderName()
}

func (t *Tiered) GenerateQuestion(ctx context.Context, req QuestionRequest) (string, error) {
	question, err := callRemote(t, ctx, OpQuestion, func(ctx context.Context) (string, error) {
		return t.remote.GenerateQuestion(ctx, req)
	})
	if err == nil {
		return question, nil
	}
	t.noteFallback(OpQuestion, err, zap.Int("question_number", req.QuestionNumber))

	return callFallback(t, ctx, OpQuestion, func(ctx context.Context) (string, error) {
		return t.fallback.GenerateQuestion(ctx, req)
	}, err)
}

func (t *Tiered) EvaluateTranscript(ctx context.Context, req EvaluationRequest) (*models.Evaluation, error) {
	eval, err := callRemote(t, ctx, OpEvaluation, func(ctx context.Context) (*models.Evaluation, error) {
		return t.remote.EvaluateTranscript(ctx, req)
	})
	if err == nil {
		return eval, nil
	}
	t.noteFallback(OpEvaluation, err, zap.Int("answers", len(req.Answers)))

	return callFallback(t, ctx, OpEvaluation, func(ctx context.Context) (*models.Evaluation, error) {
		return t.fallback.EvaluateTranscript(ctx, req)
	}, err)
}

func (t *Tiered) noteFallback(op string, err error, fields ...zap.Field) {
	reason := ErrCodeServiceDown
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		reason = provErr.Code
	}
	t.observer.ObserveFallback(op, reason)
	t.logger.Warn("Remote provider failed, using fallback",
		append(fields,
			zap.String("provider", t.remote.GetProviderName()),
			zap.String("operation", op),
			zap.String("reason", reason),
			zap.Error(err))...)
}

// remoteBudget leaves a share of the caller's deadline for the fallback attempt.
func (t *Tiered) remoteBudget(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	remaining := time.Until(deadline)
	return remaining - time.Duration(float64(remaining)*t.reserve)
}

func callRemote[T any](t *Tiered, ctx context.Context, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	name := t.remote.GetProviderName()
	start := time.Now()

	res, err := t.breaker.Execute(func() (interface{}, error) {
		v, err := WithTimeout(ctx, t.remoteBudget(ctx), fn)
		if errors.Is(err, ErrTimeout) {
			err = &ProviderError{Provider: name, Code: ErrCodeTimeout, Message: "remote call timed out", Err: err}
		}
		return v, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &ProviderError{Provider: name, Code: ErrCodeServiceDown, Message: "circuit open", Err: err}
	}

	if err != nil {
		t.observer.ObserveCall(name, op, "error", time.Since(start))
		return zero, err
	}
	t.observer.ObserveCall(name, op, "success", time.Since(start))
	return res.(T), nil
}

func callFallback[T any](t *Tiered, ctx context.Context, op string, fn func(context.Context) (T, error), remoteErr error) (T, error) {
	var zero T
	name := t.fallback.GetProviderName()
	start := time.Now()

	v, err := fn(ctx)
	if err != nil {
		t.observer.ObserveCall(name, op, "error", time.Since(start))
		t.logger.Error("Fallback provider failed",
			zap.String("operation", op),
			zap.NamedError("remote_error", remoteErr),
			zap.Error(err))
		return zero, errors.Join(remoteErr, err)
	}
	t.observer.ObserveCall(name, op, "success", time.Since(start))
	return v, nil
}

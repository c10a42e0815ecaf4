package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/memento/pkg/alert"
	"github.com/soundprediction/memento/pkg/config"
)

// BreakerStore wraps a Store with circuit breaking logic. When the
// database keeps failing the breaker opens and calls fail fast as
// ErrUnavailable instead of queueing on a dead connection pool.
type BreakerStore struct {
	store   Store
	cb      *gobreaker.CircuitBreaker
	alerter alert.Alerter
	name    string
}

// NewBreakerStore creates a circuit-breaking wrapper around a store.
func NewBreakerStore(s Store, cfg config.CircuitBreakerConfig, alerter alert.Alerter, logger *slog.Logger, name string) *BreakerStore {
	if logger == nil {
		logger = slog.Default()
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
			if to == gobreaker.StateOpen && alerter != nil {
				msg := fmt.Sprintf("Circuit Breaker '%s' changed status from %s to %s. Too many failures detected.", name, from, to)
				_ = alerter.Alert(fmt.Sprintf("URGENT: Circuit Breaker Tripped - %s", name), msg)
			}
		},
	}

	return &BreakerStore{
		store:   s,
		cb:      gobreaker.NewCircuitBreaker(st),
		alerter: alerter,
		name:    name,
	}
}

// ExecuteRead implements Store.
func (b *BreakerStore) ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	rows, err := b.cb.Execute(func() (interface{}, error) {
		return b.store.ExecuteRead(ctx, query, params)
	})
	if err != nil {
		return nil, wrapBreakerError(err)
	}
	return rows.([]map[string]any), nil
}

// ExecuteWrite implements Store.
func (b *BreakerStore) ExecuteWrite(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	rows, err := b.cb.Execute(func() (interface{}, error) {
		return b.store.ExecuteWrite(ctx, query, params)
	})
	if err != nil {
		return nil, wrapBreakerError(err)
	}
	return rows.([]map[string]any), nil
}

// VerifyConnectivity implements Store. Probes bypass the breaker so a
// recovered database can be observed while the breaker is still open.
func (b *BreakerStore) VerifyConnectivity(ctx context.Context) error {
	return b.store.VerifyConnectivity(ctx)
}

// Close implements Store.
func (b *BreakerStore) Close(ctx context.Context) error {
	return b.store.Close(ctx)
}

// wrapBreakerError converts breaker rejections into ErrUnavailable and
// passes already-classified store errors through untouched.
func wrapBreakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

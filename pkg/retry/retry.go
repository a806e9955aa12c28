package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/m04kA/SMC-ClinicBooking/pkg/txmanager"
)

const (
	DefaultMaxTries        = 3
	DefaultInitialInterval = 100 * time.Millisecond
	DefaultMaxInterval     = time.Second
)

// Policy параметры повторов для чтений
type Policy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxTries:        DefaultMaxTries,
		InitialInterval: DefaultInitialInterval,
		MaxInterval:     DefaultMaxInterval,
	}
}

// Read выполняет op, повторяя её с экспоненциальной задержкой, пока ошибка временная
// (txmanager.IsTransient). Остальные ошибки возвращаются сразу.
// Только для операций без побочных эффектов
func Read[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval

	return backoff.Retry(ctx, func() (T, error) {
		res, err := op()
		if err != nil && !txmanager.IsTransient(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(p.MaxTries))
}

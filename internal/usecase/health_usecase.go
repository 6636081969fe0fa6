package usecase

import (
	"context"
	"time"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	checks   map[string]HealthCheck
	optional map[string]bool
}

// NewHealthUsecase builds a checker. Failing optional checks are reported
// as "degraded" without failing the whole status.
func NewHealthUsecase(checks map[string]HealthCheck, optional ...string) HealthUsecase {
	u := &healthUsecase{checks: checks, optional: map[string]bool{}}
	for _, name := range optional {
		u.optional[name] = true
	}
	return u
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{}
	healthy := true
	for name, check := range u.checks {
		if err := check(ctx); err != nil {
			if u.optional[name] {
				status[name] = "degraded"
				continue
			}
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	return status, healthy
}

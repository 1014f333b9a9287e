package middleware

import (
	"net/http"

	"github.com/ulule/limiter/v3"
	stdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewIPRateLimiter returns middleware that limits by client IP (in-memory
// store). This is a coarse flood guard in front of the whole API; the login
// lockout is handled separately and precisely by the throttle service.
// rateFormatted: "100-M", "1000-H", "50-S". Empty disables.
func NewIPRateLimiter(rateFormatted string) (func(next http.Handler) http.Handler, error) {
	if rateFormatted == "" {
		return noopMiddleware, nil
	}
	rate, err := limiter.NewRateFromFormatted(rateFormatted)
	if err != nil {
		return nil, err
	}
	store := memory.NewStore()
	instance := limiter.New(store, rate)
	return stdlib.NewMiddleware(instance).Handler, nil
}

func noopMiddleware(next http.Handler) http.Handler {
	return next
}

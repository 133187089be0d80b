package httpx

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// ActorID reads the acting user id from the X-Actor-Id header. Zero means
// an unattributed (system) caller.
func ActorID(r *http.Request) int64 {
	v, err := strconv.ParseInt(r.Header.Get("X-Actor-Id"), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// URLInt64 parses a chi URL parameter as int64.
func URLInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", ErrValidation, name)
	}
	return v, nil
}

// QueryDate parses an optional YYYY-MM-DD query parameter. A missing
// parameter returns nil.
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrValidation, name)
	}
	return &d, nil
}

// RequireQueryDate parses a mandatory YYYY-MM-DD query parameter.
func RequireQueryDate(r *http.Request, name string) (time.Time, error) {
	d, err := QueryDate(r, name)
	if err != nil {
		return time.Time{}, err
	}
	if d == nil {
		return time.Time{}, fmt.Errorf("%w: %s is required", ErrValidation, name)
	}
	return *d, nil
}

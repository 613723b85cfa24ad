package event_api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"barangay-events/internal/events/service"
)

// query collects every invalid parameter so one 422 reports them all.
type query struct {
	values url.Values
	errs   []service.FieldError
}

func newQuery(r *http.Request) *query {
	return &query{values: r.URL.Query()}
}

func (q *query) fail(name, message string) {
	q.errs = append(q.errs, service.FieldError{Field: name, Message: message})
}

// Int parses name, falling back to def when absent. hi < 0 means unbounded.
func (q *query) Int(name string, def, lo, hi int) int {
	raw := q.values.Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(name, "value is not a valid integer")
		return def
	}
	if n < lo {
		q.fail(name, fmt.Sprintf("must be greater than or equal to %d", lo))
		return def
	}
	if hi >= 0 && n > hi {
		q.fail(name, fmt.Sprintf("must be less than or equal to %d", hi))
		return def
	}
	return n
}

func (q *query) Bool(name string, def bool) bool {
	raw := q.values.Get(name)
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	}
	q.fail(name, "value could not be parsed to a boolean")
	return def
}

func (q *query) RequiredString(name string) string {
	raw := q.values.Get(name)
	if raw == "" {
		q.fail(name, "field required")
	}
	return raw
}

// Invalid writes a 422 and reports true when any parameter was rejected.
func (q *query) Invalid(w http.ResponseWriter, h *Handler) bool {
	if len(q.errs) == 0 {
		return false
	}
	h.writeValidation(w, &service.ValidationError{Errors: q.errs})
	return true
}

package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ticket-office/internal/middleware"
	"ticket-office/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Timestamp layouts accepted from form fields. HTML datetime-local
// inputs submit the first two; RFC 3339 covers scripted clients.
var formTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// urlID parses a numeric id route parameter. A malformed id behaves
// like a missing row: the route 404s.
func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// formOptionalString returns nil for an absent or blank field
func formOptionalString(r *http.Request, name string) *string {
	value := strings.TrimSpace(r.PostFormValue(name))
	if value == "" {
		return nil
	}
	return &value
}

// formOptionalInt returns nil for an absent or blank field
func formOptionalInt(r *http.Request, name string) (*int, error) {
	value := strings.TrimSpace(r.PostFormValue(name))
	if value == "" {
		return nil, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// formOptionalTime returns nil for an absent or blank field
func formOptionalTime(r *http.Request, name string) (*time.Time, error) {
	value := strings.TrimSpace(r.PostFormValue(name))
	if value == "" {
		return nil, nil
	}

	for _, layout := range formTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}
	return nil, errors.New("unrecognized timestamp format")
}

// formDecimal parses a required monetary amount
func formDecimal(r *http.Request, name string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(r.PostFormValue(name)))
}

// fieldError builds a single-field validation error list
func fieldError(field, message string) []middleware.ValidationError {
	return []middleware.ValidationError{{Field: field, Message: message}}
}

// respondFormErrors re-renders the form document with field errors.
// Failed validation is not an HTTP error: the admin gets the form
// back with annotations, status 200.
func respondFormErrors(w http.ResponseWriter, errs []middleware.ValidationError) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"errors": errs,
	})
}

// respondStoreError maps repository sentinels onto HTTP statuses:
// missing rows are 404, anything else is a 500.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrProductGroupNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrPriceTierNotFound),
		errors.Is(err, repository.ErrProductViewNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	default:
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

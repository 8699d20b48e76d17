package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tabung/internal/core"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = fmt.Errorf("%w: empty request body", core.ErrValidation)

// amount accepts "12.30", "12,30" or a bare JSON number.
type amount string

func (a *amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amount(s)
		return nil
	}
	if string(b) == "null" {
		*a = ""
		return nil
	}
	*a = amount(b)
	return nil
}

// money parses a strictly positive amount.
func (a amount) money(field string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(string(a))
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: %s: %w", core.ErrValidation, field, err)
	}
	return core.Money{Cents: cents}, nil
}

// budget parses an amount that may be zero. Empty means zero.
func (a amount) budget(field string) (core.Money, error) {
	if strings.TrimSpace(string(a)) == "" {
		return core.Money{}, nil
	}
	cents, err := core.ParseBudgetToCents(string(a))
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: %s: %w", core.ErrValidation, field, err)
	}
	return core.Money{Cents: cents}, nil
}

// decodeJSON reads a single JSON object into dst, refusing unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("%w: malformed request body: %w", core.ErrValidation, err)
	}
	return nil
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", core.ErrValidation, raw)
	}
	return id, nil
}

// parseTimestamp accepts RFC 3339 or a bare date. Empty yields the zero time.
func parseTimestamp(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: expected YYYY-MM-DD or RFC 3339, got %q", core.ErrValidation, field, s)
	}
	return d.Time, nil
}

// parseOptionalDate parses YYYY-MM-DD. Empty yields the zero date.
func parseOptionalDate(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

// sanitizeInput trims and drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

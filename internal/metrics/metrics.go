// Package metrics holds the Prometheus collectors exported by tabung.
package metrics

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tabung/internal/core"
)

// LedgerOperations counts ledger operations by name and outcome.
var LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tabung",
	Subsystem: "ledger",
	Name:      "operations_total",
	Help:      "Total ledger operations by operation and result.",
}, []string{"op", "result"})

// BillPayments counts successful bill payments by funding source.
var BillPayments = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tabung",
	Subsystem: "ledger",
	Name:      "bill_payments_total",
	Help:      "Total bill payments by the location that funded them.",
}, []string{"source"})

// Resets counts completed period resets.
var Resets = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tabung",
	Subsystem: "ledger",
	Name:      "resets_total",
	Help:      "Total completed period resets.",
})

// RateLimited counts mutating requests refused by the rate limiter.
var RateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tabung",
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Total requests refused by the rate limiter.",
})

// HTTPRequestDuration tracks API latency by route pattern.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "tabung",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by method, route and status class.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

// Result labels for LedgerOperations.
const (
	ResultOK                = "ok"
	ResultValidation        = "validation"
	ResultNotFound          = "not_found"
	ResultConflict          = "conflict"
	ResultInsufficientFunds = "insufficient_funds"
	ResultBudgetExceeded    = "budget_exceeded"
	ResultError             = "error"
)

// Result classifies err into a low-cardinality label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrReservedNameConflict),
		errors.Is(err, core.ErrReservedCategory):
		return ResultValidation
	case errors.Is(err, core.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, core.ErrInsufficientFunds):
		return ResultInsufficientFunds
	case errors.Is(err, core.ErrBudgetExceeded):
		return ResultBudgetExceeded
	case errors.Is(err, core.ErrAlreadyPaid),
		errors.Is(err, core.ErrNameConflict),
		errors.Is(err, core.ErrCategoryInUse),
		errors.Is(err, core.ErrLinkedExpense):
		return ResultConflict
	}
	return ResultError
}

// ObserveOperation records one ledger operation.
func ObserveOperation(op string, err error) {
	LedgerOperations.WithLabelValues(op, Result(err)).Inc()
}

// BillPaid records a payment funded from source.
func BillPaid(source core.ExpenseSource) {
	BillPayments.WithLabelValues(strings.ToLower(string(source))).Inc()
}

// StatusClass maps an HTTP status to "2xx", "4xx" and so on.
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	}
	return "1xx"
}

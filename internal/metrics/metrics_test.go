package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"tabung/internal/core"
)

func TestResult(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ResultOK},
		{"validation", fmt.Errorf("%w: bad amount", core.ErrValidation), ResultValidation},
		{"reserved name", core.ErrReservedNameConflict, ResultValidation},
		{"not found", core.NotFound("bill", 3), ResultNotFound},
		{"funds", core.ErrInsufficientFunds, ResultInsufficientFunds},
		{"budget", core.ErrBudgetExceeded, ResultBudgetExceeded},
		{"already paid", fmt.Errorf("pay: %w", core.ErrAlreadyPaid), ResultConflict},
		{"linked", core.ErrLinkedExpense, ResultConflict},
		{"persistence", core.Persistence("insert", errors.New("disk full")), ResultError},
		{"unknown", errors.New("boom"), ResultError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Result(tt.err); got != tt.want {
				t.Errorf("Result(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestObserveOperation(t *testing.T) {
	before := counterValue(t, LedgerOperations.WithLabelValues("pay_bill", ResultConflict))
	ObserveOperation("pay_bill", core.ErrAlreadyPaid)
	after := counterValue(t, LedgerOperations.WithLabelValues("pay_bill", ResultConflict))
	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}
}

func TestBillPaid(t *testing.T) {
	before := counterValue(t, BillPayments.WithLabelValues("bank"))
	BillPaid(core.SourceBank)
	if got := counterValue(t, BillPayments.WithLabelValues("bank")) - before; got != 1 {
		t.Errorf("bank payments delta = %v, want 1", got)
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 201: "2xx", 302: "3xx", 404: "4xx", 422: "4xx", 500: "5xx", 101: "1xx"}
	for status, want := range cases {
		if got := StatusClass(status); got != want {
			t.Errorf("StatusClass(%d) = %q, want %q", status, got, want)
		}
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

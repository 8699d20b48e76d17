package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tabung/internal/core"
	"tabung/internal/log"
	"tabung/internal/metrics"
	"tabung/internal/services"
)

type billRequest struct {
	Name    string `json:"name"`
	Amount  amount `json:"amount"`
	IsFixed bool   `json:"is_fixed"`
	DueDate string `json:"due_date"`
}

func (req billRequest) input() (services.BillInput, error) {
	amt, err := req.Amount.budget("amount")
	if err != nil {
		return services.BillInput{}, err
	}
	due, err := core.ParseDate(req.DueDate)
	if err != nil {
		return services.BillInput{}, err
	}
	return services.BillInput{
		Name:    sanitizeInput(req.Name),
		Amount:  amt,
		IsFixed: req.IsFixed,
		DueDate: due,
	}, nil
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.ledger.ListBills(r.Context())
	if err != nil {
		writeLedgerError(w, r, "list_bills", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(bills, toBill))
}

func (s *Server) handleAddBill(w http.ResponseWriter, r *http.Request) {
	var id int64
	err := func() error {
		var req billRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		in, err := req.input()
		if err != nil {
			return err
		}
		id, err = s.ledger.AddBill(r.Context(), in)
		return err
	}()
	metrics.ObserveOperation(log.OpAddBill, err)
	if err != nil {
		writeLedgerError(w, r, log.OpAddBill, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	err := func() error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		var req billRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		in, err := req.input()
		if err != nil {
			return err
		}
		return s.ledger.UpdateBill(r.Context(), id, in)
	}()
	s.finish(w, r, log.OpUpdateBill, err)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err == nil {
		err = s.ledger.DeleteBill(r.Context(), id)
	}
	s.finish(w, r, log.OpDeleteBill, err)
}

type payRequest struct {
	Amount amount `json:"amount"`
}

func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	var res services.PayResult
	err := func() error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		var opts services.PayOptions
		// The body is optional: only dynamic bills need an amount.
		var req payRequest
		if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
			return err
		}
		if opts.Amount, err = req.Amount.budget("amount"); err != nil {
			return err
		}
		res, err = s.ledger.PayBill(r.Context(), id, opts)
		return err
	}()
	metrics.ObserveOperation(log.OpPayBill, err)
	if err != nil {
		writeLedgerError(w, r, log.OpPayBill, err)
		return
	}
	metrics.BillPaid(res.Source)
	writeJSON(w, http.StatusOK, payResultDTO{
		BillID:     res.BillID,
		ExpenseID:  res.ExpenseID,
		Source:     string(res.Source),
		Amount:     res.Amount.Decimal(),
		NextBillID: res.NextBillID,
	})
}

func (s *Server) handleReverseBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err == nil {
		err = s.ledger.ReverseBill(r.Context(), id)
	}
	s.finish(w, r, log.OpReverseBill, err)
}

type goalRequest struct {
	Name         string `json:"name"`
	TargetAmount amount `json:"target_amount"`
	Deadline     string `json:"deadline"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.ledger.ListGoals(r.Context())
	if err != nil {
		writeLedgerError(w, r, "list_goals", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(goals, toGoal))
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var id int64
	err := func() error {
		var req goalRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		target, err := req.TargetAmount.money("target_amount")
		if err != nil {
			return err
		}
		deadline, err := parseOptionalDate(req.Deadline)
		if err != nil {
			return err
		}
		id, err = s.ledger.AddGoal(r.Context(), services.GoalInput{
			Name:         sanitizeInput(req.Name),
			TargetAmount: target,
			Deadline:     deadline,
		})
		return err
	}()
	metrics.ObserveOperation(log.OpAddGoal, err)
	if err != nil {
		writeLedgerError(w, r, log.OpAddGoal, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err == nil {
		err = s.ledger.DeleteGoal(r.Context(), id)
	}
	s.finish(w, r, log.OpDeleteGoal, err)
}

// handleListArchive returns the whole archive, or one reset's rows when
// archive_date is given.
func (s *Server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	var (
		items []core.ArchivedExpense
		err   error
	)
	if raw := strings.TrimSpace(r.URL.Query().Get("archive_date")); raw != "" {
		ts, perr := parseTimestamp("archive_date", raw)
		if perr != nil {
			writeLedgerError(w, r, "list_archive", perr)
			return
		}
		items, err = s.ledger.ArchiveByDate(r.Context(), ts)
	} else {
		items, err = s.ledger.ListArchive(r.Context())
	}
	if err != nil {
		writeLedgerError(w, r, "list_archive", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, toArchived))
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

// handleReset runs the period reset. The body must carry {"confirm": true}.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var res services.ResetResult
	err := func() error {
		var req resetRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		if !req.Confirm {
			return fmt.Errorf("%w: reset requires confirm=true", core.ErrValidation)
		}
		var err error
		res, err = s.ledger.ResetPeriod(r.Context())
		return err
	}()
	metrics.ObserveOperation(log.OpResetPeriod, err)
	if err != nil {
		writeLedgerError(w, r, log.OpResetPeriod, err)
		return
	}
	metrics.Resets.Inc()
	log.FromContext(r.Context()).InfoContext(r.Context(), "Period reset",
		log.FieldArchiveDate, res.ArchiveDate, "archived", res.Archived)
	writeJSON(w, http.StatusOK, toResetResult(res))
}

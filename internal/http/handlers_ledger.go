package http

import (
	"net/http"

	"tabung/internal/core"
	"tabung/internal/log"
	"tabung/internal/metrics"
	"tabung/internal/services"
)

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	b, err := s.ledger.GetBalances(r.Context())
	if err != nil {
		writeLedgerError(w, r, "get_balances", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalances(b))
}

func (s *Server) handleTodaySummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.ledger.TodaySummary(r.Context())
	if err != nil {
		writeLedgerError(w, r, "today_summary", err)
		return
	}
	writeJSON(w, http.StatusOK, daySummaryDTO{
		Day:   sum.Day.String(),
		Spent: sum.Spent.Decimal(),
		Added: sum.Added.Decimal(),
	})
}

type moneyRequest struct {
	Amount      amount `json:"amount"`
	Location    string `json:"location"`
	Source      string `json:"source"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

func (req moneyRequest) input() (services.MoneyInput, error) {
	amt, err := req.Amount.money("amount")
	if err != nil {
		return services.MoneyInput{}, err
	}
	loc, err := core.ParseLocation(req.Location)
	if err != nil {
		return services.MoneyInput{}, err
	}
	src, err := core.ParseIncomeSource(req.Source)
	if err != nil {
		return services.MoneyInput{}, err
	}
	date, err := parseTimestamp("date", req.Date)
	if err != nil {
		return services.MoneyInput{}, err
	}
	return services.MoneyInput{
		Amount:      amt,
		Location:    loc,
		Source:      src,
		Description: sanitizeInput(req.Description),
		Date:        date,
	}, nil
}

func (s *Server) handleListMoney(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledger.ListMoney(r.Context())
	if err != nil {
		writeLedgerError(w, r, "list_money", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(entries, toMoney))
}

func (s *Server) handleRecordMoney(w http.ResponseWriter, r *http.Request) {
	var id int64
	err := func() error {
		var req moneyRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		in, err := req.input()
		if err != nil {
			return err
		}
		id, err = s.ledger.RecordMoney(r.Context(), in)
		return err
	}()
	metrics.ObserveOperation(log.OpRecordMoney, err)
	if err != nil {
		writeLedgerError(w, r, log.OpRecordMoney, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateMoney(w http.ResponseWriter, r *http.Request) {
	err := func() error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		var req moneyRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		in, err := req.input()
		if err != nil {
			return err
		}
		return s.ledger.UpdateMoney(r.Context(), id, in)
	}()
	s.finish(w, r, log.OpUpdateMoney, err)
}

type expenseRequest struct {
	Amount      amount `json:"amount"`
	Description string `json:"description"`
	Source      string `json:"source"`
	CategoryID  int64  `json:"category_id"`
	Date        string `json:"date"`
	Confirm     bool   `json:"confirm"`
}

func (req expenseRequest) input() (services.ExpenseInput, error) {
	amt, err := req.Amount.money("amount")
	if err != nil {
		return services.ExpenseInput{}, err
	}
	src, err := core.ParseExpenseSource(req.Source)
	if err != nil {
		return services.ExpenseInput{}, err
	}
	date, err := parseTimestamp("date", req.Date)
	if err != nil {
		return services.ExpenseInput{}, err
	}
	return services.ExpenseInput{
		Amount:      amt,
		Description: sanitizeInput(req.Description),
		Source:      src,
		CategoryID:  req.CategoryID,
		Date:        date,
		Confirm:     req.Confirm,
	}, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.ListExpenses(r.Context())
	if err != nil {
		writeLedgerError(w, r, "list_expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, toExpense))
}

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	var res services.ExpenseResult
	err := func() error {
		var req expenseRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		in, err := req.input()
		if err != nil {
			return err
		}
		res, err = s.ledger.RecordExpense(r.Context(), in)
		return err
	}()
	metrics.ObserveOperation(log.OpRecordExpense, err)
	if err != nil {
		writeLedgerError(w, r, log.OpRecordExpense, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResult(res))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var res services.ExpenseResult
	err := func() error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		var req expenseRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		in, err := req.input()
		if err != nil {
			return err
		}
		res, err = s.ledger.UpdateExpense(r.Context(), id, in)
		return err
	}()
	metrics.ObserveOperation(log.OpUpdateExpense, err)
	if err != nil {
		writeLedgerError(w, r, log.OpUpdateExpense, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResult(res))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err == nil {
		err = s.ledger.DeleteExpense(r.Context(), id)
	}
	s.finish(w, r, log.OpDeleteExpense, err)
}

type categoryRequest struct {
	Name   string `json:"name"`
	Budget amount `json:"budget"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		writeLedgerError(w, r, "list_categories", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(cats, toCategory))
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var id int64
	err := func() error {
		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		budget, err := req.Budget.budget("budget")
		if err != nil {
			return err
		}
		id, err = s.ledger.AddCategory(r.Context(), sanitizeInput(req.Name), budget)
		return err
	}()
	metrics.ObserveOperation(log.OpAddCategory, err)
	if err != nil {
		writeLedgerError(w, r, log.OpAddCategory, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	err := func() error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		budget, err := req.Budget.budget("budget")
		if err != nil {
			return err
		}
		return s.ledger.UpdateCategory(r.Context(), id, sanitizeInput(req.Name), budget)
	}()
	s.finish(w, r, log.OpUpdateCategory, err)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err == nil {
		err = s.ledger.DeleteCategory(r.Context(), id)
	}
	s.finish(w, r, log.OpDeleteCategory, err)
}

// finish records the outcome of a mutation that returns no body.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, op string, err error) {
	metrics.ObserveOperation(op, err)
	if err != nil {
		writeLedgerError(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

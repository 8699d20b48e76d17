package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"tabung/internal/core"
	"tabung/internal/services"
	"tabung/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seed(t *testing.T, path string) int64 {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()
	ctx := context.Background()
	ledger, err := services.NewLedger(ctx, repo)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	if _, err := ledger.RecordMoney(ctx, services.MoneyInput{
		Amount: core.Money{Cents: 10000}, Location: core.LocationCash, Source: core.IncomeSalary, Description: "pay",
	}); err != nil {
		t.Fatalf("RecordMoney: %v", err)
	}
	id, err := ledger.AddBill(ctx, services.BillInput{
		Name: "Internet", Amount: core.Money{Cents: 4000}, DueDate: core.NewDate(2099, 1, 5),
	})
	if err != nil {
		t.Fatalf("AddBill: %v", err)
	}
	return id
}

func TestCommands(t *testing.T) {
	t.Setenv("BILLS_BUDGET_POLICY", "")
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "ctl.db")
	t.Setenv("SQLITE_DB_PATH", path)
	billID := seed(t, path)
	db := "--db=" + path

	out, err := run(t, "balances", db)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if !strings.Contains(out, "100.00") {
		t.Errorf("balances output missing cash total:\n%s", out)
	}

	out, err = run(t, "bills", "pay", db, "1")
	if err != nil || billID != 1 {
		t.Fatalf("bills pay: %v (bill id %d)", err, billID)
	}
	if !strings.Contains(out, "from Cash") {
		t.Errorf("pay output = %q", out)
	}

	if _, err := run(t, "bills", "pay", db, "1"); err == nil {
		t.Error("paying twice should fail")
	}

	out, err = run(t, "bills", "list", db)
	if err != nil {
		t.Fatalf("bills list: %v", err)
	}
	if !strings.Contains(out, "Internet") || !strings.Contains(out, "true") {
		t.Errorf("list output:\n%s", out)
	}

	if _, err := run(t, "bills", "reverse", db, "1"); err != nil {
		t.Fatalf("bills reverse: %v", err)
	}

	if _, err := run(t, "reset", db); err == nil {
		t.Error("reset without --yes should fail")
	}
	out, err = run(t, "reset", db, "--yes")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !strings.Contains(out, "Bills budget RM 40.00") {
		t.Errorf("reset output = %q", out)
	}

	out, err = run(t, "migrate", db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "Schema version 3") {
		t.Errorf("migrate output = %q", out)
	}
}

func TestParseID(t *testing.T) {
	for _, s := range []string{"0", "-1", "abc", ""} {
		if _, err := parseID(s); err == nil {
			t.Errorf("parseID(%q) should fail", s)
		}
	}
	if id, err := parseID("42"); err != nil || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, err)
	}
}

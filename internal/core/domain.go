package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	LocationCash     Location = "Cash"
	LocationBank     Location = "Bank"
	LocationMyTabung Location = "MyTabung"

	IncomeSalary    IncomeSource = "Salary"
	IncomeFreelance IncomeSource = "Freelance"
	IncomeDonation  IncomeSource = "Donation"
	IncomeOthers    IncomeSource = "Others"

	SourceCash ExpenseSource = "Cash"
	SourceBank ExpenseSource = "Bank"
)

// Reserved category names. They are seeded by migrations and never accepted from user input.
const (
	CategoryOthers = "Others"
	CategoryBills  = "Bills"
)

// DateLayout is the storage and wire format of date-only values.
const DateLayout = "2006-01-02"

type (
	// Location is where money is held.
	Location string

	// IncomeSource is where money came from.
	IncomeSource string

	// ExpenseSource is the spendable location an expense is drawn from.
	// MyTabung is deliberately not representable.
	ExpenseSource string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	MoneyEntry struct {
		ID          int64
		Amount      Money
		Location    Location
		Source      IncomeSource
		Date        time.Time
		Description string
	}

	Expense struct {
		ID          int64
		Amount      Money
		Description string
		Source      ExpenseSource
		CategoryID  int64
		Date        time.Time
		BillID      int64 // non-zero only for expenses created by a bill payment
	}

	Category struct {
		ID     int64
		Name   string
		Budget Money
	}

	Bill struct {
		ID       int64
		Name     string
		Amount   Money // zero for dynamic bills
		IsFixed  bool
		DueDate  Date
		Paid     bool
		PaidDate time.Time
		// RecursFrom is the fixed bill whose payment created this one.
		RecursFrom int64
	}

	ArchivedExpense struct {
		ID          int64
		ExpenseID   int64
		Amount      Money
		Description string
		Source      ExpenseSource
		CategoryID  int64
		Date        time.Time
		BillID      int64
		ArchiveDate time.Time
	}

	Goal struct {
		ID           int64
		Name         string
		TargetAmount Money
		Deadline     Date
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidLocation  = errors.New("invalid location")
	ErrInvalidSource    = errors.New("invalid source")
)

// ParseLocation maps a wire value onto Location.
func ParseLocation(s string) (Location, error) {
	switch l := Location(strings.TrimSpace(s)); l {
	case LocationCash, LocationBank, LocationMyTabung:
		return l, nil
	}
	return "", fmt.Errorf("%w: %w %q", ErrValidation, ErrInvalidLocation, s)
}

func ParseIncomeSource(s string) (IncomeSource, error) {
	switch src := IncomeSource(strings.TrimSpace(s)); src {
	case IncomeSalary, IncomeFreelance, IncomeDonation, IncomeOthers:
		return src, nil
	}
	return "", fmt.Errorf("%w: %w %q", ErrValidation, ErrInvalidSource, s)
}

func ParseExpenseSource(s string) (ExpenseSource, error) {
	switch src := ExpenseSource(strings.TrimSpace(s)); src {
	case SourceCash, SourceBank:
		return src, nil
	}
	return "", fmt.Errorf("%w: %w %q", ErrValidation, ErrInvalidSource, s)
}

func (l Location) Valid() bool {
	_, err := ParseLocation(string(l))
	return err == nil
}

func (s IncomeSource) Valid() bool {
	_, err := ParseIncomeSource(string(s))
	return err == nil
}

func (s ExpenseSource) Valid() bool {
	_, err := ParseExpenseSource(string(s))
	return err == nil
}

// IsReservedCategoryName reports whether name collides with Others or Bills.
// Comparison ignores case and surrounding space so "bills " is also refused.
func IsReservedCategoryName(name string) bool {
	n := strings.TrimSpace(name)
	return strings.EqualFold(n, CategoryOthers) || strings.EqualFold(n, CategoryBills)
}

// SyntheticExpenseDescription is the description given to the expense a bill payment creates.
func SyntheticExpenseDescription(billName string) string {
	return "Paid: " + billName
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// IsEmpty returns true if the date is zero (for backward compatibility with optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// AddMonth returns the same day of the following calendar month.
// Days that do not exist in the target month clamp to its last day (Jan 31 -> Feb 28/29).
func (d Date) AddMonth() Date {
	year, month, day := d.Year(), d.Time.Month()+1, d.Day()
	if month > time.December {
		month = time.January
		year++
	}
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return NewDate(year, int(month), day)
}

// DaysUntil returns the number of whole days from the calendar day of now to d.
func (d Date) DaysUntil(now time.Time) int {
	return int(d.Sub(DateOf(now).Time).Hours() / 24)
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

func (e MoneyEntry) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if !e.Location.Valid() {
		return fmt.Errorf("%w: %w %q", ErrValidation, ErrInvalidLocation, e.Location)
	}
	if !e.Source.Valid() {
		return fmt.Errorf("%w: %w %q", ErrValidation, ErrInvalidSource, e.Source)
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyDescription)
	}
	if len(e.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyDescription)
	}
	if len(e.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	}
	if !e.Source.Valid() {
		return fmt.Errorf("%w: %w %q", ErrValidation, ErrInvalidSource, e.Source)
	}
	return nil
}

func (b Bill) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyName)
	}
	if b.Amount.Cents < 0 || b.Amount.Cents > MaxAmountCents {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidAmount)
	}
	// Fixed bills recur with the same amount, so they cannot be dynamic.
	if b.IsFixed && b.Amount.Cents == 0 {
		return fmt.Errorf("%w: fixed bill needs an amount", ErrValidation)
	}
	if err := b.DueDate.Validate(); err != nil {
		return fmt.Errorf("%w: due date: %w", ErrValidation, err)
	}
	return nil
}

// IsDynamic reports whether the amount is only known at payment time.
func (b Bill) IsDynamic() bool {
	return b.Amount.Cents == 0
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyName)
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

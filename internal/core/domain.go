package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  Type = "INCOME"
	Expense Type = "EXPENSE"
)

// DateLayout is the ISO-8601 calendar date format used for every stored date.
const DateLayout = "2006-01-02"

// MaxDescriptionLength bounds descriptions accepted from front-ends, in
// characters.
const MaxDescriptionLength = 200

// MaxMagnitude is the largest amount front-ends accept. Its cents stay well
// inside the exact integer range of the REAL column and a summary over
// millions of such rows still fits in int64 cents.
var MaxMagnitude = decimal.New(1, 12)

type (
	// Type tags a transaction as money coming in or going out.
	Type string

	// Transaction is one stored ledger row. Amount carries the sign:
	// positive for income, negative for expenses.
	Transaction struct {
		ID          int64
		Date        string
		Description string
		Amount      decimal.Decimal
		Type        Type
	}

	// TransactionInput is what a caller hands to the store. Magnitude is
	// taken as an absolute value; its sign is never trusted.
	TransactionInput struct {
		Date        string
		Description string
		Magnitude   decimal.Decimal
		Type        Type
	}
)

var (
	ErrEmptyDate          = errors.New("date is required")
	ErrInvalidDate        = errors.New("date must use the YYYY-MM-DD format")
	ErrEmptyDescription   = errors.New("description is required")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrInvalidAmount      = errors.New("amount must be a number")
	ErrZeroAmount         = errors.New("amount must be greater than zero")
	ErrAmountTooLarge     = errors.New("amount must be at most 1,000,000,000,000")
	ErrInvalidType        = errors.New("type must be INCOME or EXPENSE")
)

// ValidationError reports which input field was rejected and why.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// legacyTypes maps the Spanish tags written by older front-ends.
var legacyTypes = map[string]Type{
	"INGRESO": Income,
	"GASTO":   Expense,
}

// ParseType accepts INCOME/EXPENSE in any case, plus the legacy INGRESO/GASTO tags.
func ParseType(s string) (Type, error) {
	tag := strings.ToUpper(strings.TrimSpace(s))
	switch Type(tag) {
	case Income, Expense:
		return Type(tag), nil
	}
	if t, ok := legacyTypes[tag]; ok {
		return t, nil
	}
	return "", ErrInvalidType
}

// IsValid reports whether t is one of the two known tags.
func (t Type) IsValid() bool {
	return t == Income || t == Expense
}

// Sign returns +1 for income and -1 for expenses.
func (t Type) Sign() int {
	if t == Income {
		return 1
	}
	return -1
}

// Label is the human readable name of the type.
func (t Type) Label() string {
	switch t {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	default:
		return string(t)
	}
}

func (t Type) String() string {
	return string(t)
}

// SignedAmount derives the stored amount from a caller magnitude: the
// absolute value, rounded to cents, negated for expenses.
func SignedAmount(magnitude decimal.Decimal, t Type) decimal.Decimal {
	amount := magnitude.Abs().Round(2)
	if t == Expense {
		return amount.Neg()
	}
	return amount
}

// Validate checks the boundary contract of the store: non-empty date and
// description and a known type. It does not parse the date format.
func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.Date) == "" {
		return invalid("date", ErrEmptyDate)
	}
	if strings.TrimSpace(in.Description) == "" {
		return invalid("description", ErrEmptyDescription)
	}
	if !in.Type.IsValid() {
		return invalid("type", ErrInvalidType)
	}
	return nil
}

// Normalized returns in with the date and description trimmed.
func (in TransactionInput) Normalized() TransactionInput {
	in.Date = strings.TrimSpace(in.Date)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

// ValidateForEntry applies the stricter checks front-ends run on user input
// before calling the store. Callers validate the Normalized input.
func (in TransactionInput) ValidateForEntry() error {
	if _, err := ParseDate(in.Date); err != nil {
		return err
	}
	if utf8.RuneCountInString(in.Description) > MaxDescriptionLength {
		return invalid("description", ErrDescriptionTooLong)
	}
	if in.Magnitude.IsZero() {
		return invalid("amount", ErrZeroAmount)
	}
	if in.Magnitude.Abs().GreaterThan(MaxMagnitude) {
		return invalid("amount", ErrAmountTooLarge)
	}
	return in.Validate()
}

// ParseDate checks that s is a real calendar date in YYYY-MM-DD form
// and returns it trimmed.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid("date", ErrEmptyDate)
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", invalid("date", ErrInvalidDate)
	}
	return s, nil
}

// Today returns the current local date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

// AmountClass names the colour class front-ends use for an amount.
func AmountClass(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "expense"
	}
	return "income"
}

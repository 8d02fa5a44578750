package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finanzas/internal/core"
)

func newBody(t *testing.T, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func TestRequestBodyParser(t *testing.T) {
	form := newBody(t, "description=%20Rent%01%20&amount=500")
	if form.IsJSON() {
		t.Error("form body detected as JSON")
	}
	if got := form.Get("description"); got != "Rent" {
		t.Errorf("Get(description) = %q, want Rent", got)
	}

	js := newBody(t, `{"description":"Salary","amount":2000.5}`)
	if !js.IsJSON() {
		t.Error("JSON body not detected")
	}
	if got := js.Get("amount"); got != "2000.5" {
		t.Errorf("Get(amount) = %q", got)
	}
	if got := js.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q", got)
	}

	empty := newBody(t, "")
	if empty.Get("date") != "" {
		t.Error("empty body should yield empty values")
	}

	bad := NewRequestBodyParser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json")))
	if err := bad.Parse(); err == nil {
		t.Error("expected JSON error")
	}

	huge := NewRequestBodyParser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", maxBodyBytes+10))))
	if err := huge.Parse(); err == nil {
		t.Error("expected size error")
	}
}

func TestParseTransactionInput(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		want      core.TransactionInput
	}{
		{
			name: "expense with comma decimal",
			body: "date=2025-06-02&description=Groceries&amount=150,25&type=EXPENSE",
			want: core.TransactionInput{Date: "2025-06-02", Description: "Groceries", Type: core.Expense},
		},
		{
			name: "legacy income tag",
			body: "date=2025-06-01&description=Salary&amount=2000&type=ingreso",
			want: core.TransactionInput{Date: "2025-06-01", Description: "Salary", Type: core.Income},
		},
		{name: "bad date", body: "date=06/01/2025&description=x&amount=1&type=INCOME", wantField: "date"},
		{name: "missing date", body: "description=x&amount=1&type=INCOME", wantField: "date"},
		{name: "bad type", body: "date=2025-06-01&description=x&amount=1&type=LOAN", wantField: "type"},
		{name: "bad amount", body: "date=2025-06-01&description=x&amount=1,000.50&type=INCOME", wantField: "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ParseTransactionInput(newBody(t, tt.body))
			if tt.wantField != "" {
				var verr *core.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if verr.Field != tt.wantField {
					t.Errorf("Field = %q, want %q", verr.Field, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if in.Date != tt.want.Date || in.Description != tt.want.Description || in.Type != tt.want.Type {
				t.Errorf("got %+v, want %+v", in, tt.want)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	for raw, want := range map[string]int64{"1": 1, " 42 ": 42} {
		got, err := ParseID(raw)
		if err != nil || got != want {
			t.Errorf("ParseID(%q) = %d, %v", raw, got, err)
		}
	}
	for _, raw := range []string{"", "0", "-3", "abc", "1.5"} {
		if _, err := ParseID(raw); err == nil {
			t.Errorf("ParseID(%q) should fail", raw)
		}
	}
}

func TestIsHTMX(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if IsHTMX(req) {
		t.Error("plain request reported as htmx")
	}
	req.Header.Set("HX-Request", "true")
	if !IsHTMX(req) {
		t.Error("htmx request not detected")
	}
}

func TestNoticeFor(t *testing.T) {
	if noticeFor("", "") != nil || noticeFor("bogus", "") != nil {
		t.Error("unknown notices should render nothing")
	}
	if n := noticeFor(noticeInvalid, "amount"); n.Kind != NotificationError || !strings.Contains(n.Message, "amount") {
		t.Errorf("invalid notice = %+v", n)
	}
	if n := noticeFor(noticeNotDeleted, ""); n.Kind != NotificationWarning {
		t.Errorf("not-deleted notice = %+v", n)
	}
}

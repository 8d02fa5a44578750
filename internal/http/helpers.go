package http

import (
	"errors"
	"strings"

	"finanzas/internal/core"
)

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// Notice codes carried in ?notice= after a plain form redirect.
const (
	noticeSaved      = "saved"
	noticeInvalid    = "invalid"
	noticeFailed     = "failed"
	noticeDeleted    = "deleted"
	noticeNotDeleted = "not-deleted"
)

type noticeView struct {
	Kind    NotificationType
	Message string
}

var fieldMessages = map[string]string{
	"date":        "Please enter a valid date (YYYY-MM-DD).",
	"description": "Please enter a description of at most 200 characters.",
	"amount":      "Please enter an amount greater than zero and at most 1,000,000,000,000.",
	"type":        "Please choose income or expense.",
}

// validationMessage turns a validation error into the text shown to users.
func validationMessage(err error) string {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		if msg, ok := fieldMessages[verr.Field]; ok {
			return msg
		}
	}
	return "Please complete every field."
}

// noticeFor maps a redirect notice back to the banner it shows.
func noticeFor(code, field string) *noticeView {
	switch code {
	case noticeSaved:
		return &noticeView{Kind: NotificationSuccess, Message: "Transaction saved."}
	case noticeInvalid:
		msg, ok := fieldMessages[field]
		if !ok {
			msg = "Please complete every field."
		}
		return &noticeView{Kind: NotificationError, Message: msg}
	case noticeFailed:
		return &noticeView{Kind: NotificationError, Message: msgSaveFailed}
	case noticeDeleted:
		return &noticeView{Kind: NotificationSuccess, Message: "Transaction deleted."}
	case noticeNotDeleted:
		return &noticeView{Kind: NotificationWarning, Message: "Nothing was deleted; the transaction may already be gone."}
	default:
		return nil
	}
}

const msgSaveFailed = "The transaction could not be saved. Please try again."

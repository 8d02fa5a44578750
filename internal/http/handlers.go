package http

import (
	"errors"
	"net/http"
	"net/url"

	"finanzas/internal/core"
	"finanzas/internal/log"
)

func (s *Server) pageData(r *http.Request, title string) pageData {
	q := r.URL.Query()
	return pageData{
		Title:  title,
		Today:  core.Today(),
		Notice: noticeFor(q.Get("notice"), q.Get("field")),
		Ledger: newLedgerView(s.ledger.Overview(r.Context())),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", s.pageData(r, "Finanzas"))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "dashboard.html", s.pageData(r, "Finanzas - Dashboard"))
}

func (s *Server) handleSummaryPartial(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "summary", newSummaryView(s.ledger.Summary(r.Context())))
}

func (s *Server) handleTransactionsPartial(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "transactions", newTransactionRows(s.ledger.Transactions(r.Context())))
}

func (s *Server) handleBreakdownPartial(w http.ResponseWriter, r *http.Request) {
	sum := s.ledger.Summary(r.Context())
	s.render(w, r, http.StatusOK, "breakdown", newBreakdownSlices(sum.Breakdown()))
}

func redirectNotice(w http.ResponseWriter, r *http.Request, code string, extra url.Values) {
	q := url.Values{"notice": {code}}
	for k, v := range extra {
		q[k] = v
	}
	Redirect(w, r, "/?"+q.Encode())
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	htmx := IsHTMX(r)

	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil {
		logger.Warn("Parse form error", log.FieldError, err)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	in, err := ParseTransactionInput(body)
	var tx core.Transaction
	if err == nil {
		tx, err = s.ledger.Record(r.Context(), in)
	}

	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		if !htmx {
			redirectNotice(w, r, noticeInvalid, url.Values{"field": {verr.Field}})
			return
		}
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	case err != nil:
		logger.Error("Transaction save failed", log.FieldError, err)
		if !htmx {
			redirectNotice(w, r, noticeFailed, nil)
			return
		}
		InternalServerError(msgSaveFailed).Write(w)
		return
	}

	if !htmx {
		redirectNotice(w, r, noticeSaved, nil)
		return
	}
	NewHTMXResponse().
		TriggerTransactionRecorded(tx.ID).
		TriggerFormReset().
		TriggerSuccessNotification("Transaction saved.").
		BodyHTML(`<div class="notice notice-success" role="status">Transaction saved.</div>`).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r.PathValue("id"))
	if err != nil {
		BadRequestError("Invalid transaction id").Write(w)
		return
	}

	deleted := s.ledger.Remove(r.Context(), id)

	if !IsHTMX(r) {
		code := noticeDeleted
		if !deleted {
			code = noticeNotDeleted
		}
		redirectNotice(w, r, code, nil)
		return
	}

	resp := NewHTMXResponse()
	if deleted {
		resp.TriggerTransactionDeleted(id).TriggerSuccessNotification("Transaction deleted.")
	} else {
		resp.TriggerLedgerChanged().TriggerWarningNotification(noticeFor(noticeNotDeleted, "").Message)
	}
	resp.Write(w)
}

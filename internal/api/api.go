// Package api exposes the ledger as a small JSON API built on gin. The web
// server mounts it under /api/.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/services"
)

// Ledger is the subset of the ledger service the API calls.
type Ledger interface {
	Record(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	Remove(ctx context.Context, id int64) bool
	Summary(ctx context.Context) core.Summary
	Transactions(ctx context.Context) []core.Transaction
}

// CreateTransactionRequest is the JSON body of POST /api/transactions.
// Amount may be sent as a number or a quoted decimal.
type CreateTransactionRequest struct {
	Date        string      `json:"date" binding:"required"`
	Description string      `json:"description" binding:"required"`
	Amount      json.Number `json:"amount" binding:"required"`
	Type        string      `json:"type" binding:"required"`
}

type TransactionDTO struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Formatted   string `json:"formatted"`
}

type SummaryDTO struct {
	Balance      string           `json:"balance"`
	TotalIncome  string           `json:"total_income"`
	TotalExpense string           `json:"total_expense"`
	Formatted    FormattedSummary `json:"formatted"`
}

type FormattedSummary struct {
	Balance      string `json:"balance"`
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
}

type SliceDTO struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Total string `json:"total"`
	Share string `json:"share"`
}

func toDTO(tx core.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:          tx.ID,
		Date:        tx.Date,
		Description: tx.Description,
		Amount:      tx.Amount.StringFixed(2),
		Type:        tx.Type.String(),
		Formatted:   core.FormatAmount(tx.Amount),
	}
}

// NewRouter builds the gin engine serving /api routes. The gin mode is a
// process-wide setting and is chosen by the caller.
func NewRouter(ledger Ledger, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.With(log.FieldComponent, log.ComponentAPI)

	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())

	g := r.Group("/api")
	g.GET("/transactions", ListTransactionsHandler(ledger))
	g.POST("/transactions", CreateTransactionHandler(ledger, logger))
	g.DELETE("/transactions/:id", DeleteTransactionHandler(ledger))
	g.GET("/summary", SummaryHandler(ledger))
	g.GET("/breakdown", BreakdownHandler(ledger))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.DebugContext(c.Request.Context(), "API request",
			log.FieldMethod, c.Request.Method,
			log.FieldPath, c.FullPath(),
			log.FieldStatusCode, c.Writer.Status(),
			log.FieldDuration, time.Since(start).Milliseconds(),
		)
	}
}

// ListTransactionsHandler returns every transaction, newest first.
func ListTransactionsHandler(ledger Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		txs := ledger.Transactions(c.Request.Context())
		out := make([]TransactionDTO, 0, len(txs))
		for _, tx := range txs {
			out = append(out, toDTO(tx))
		}
		c.JSON(http.StatusOK, out)
	}
}

// CreateTransactionHandler records one transaction from a JSON body.
func CreateTransactionHandler(ledger Ledger, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		date, err := core.ParseDate(req.Date)
		if err != nil {
			validationFailed(c, err)
			return
		}
		typ, err := core.ParseType(req.Type)
		if err != nil {
			validationFailed(c, &core.ValidationError{Field: "type", Err: err})
			return
		}
		amount, err := core.ParseAmount(req.Amount.String())
		if err != nil {
			validationFailed(c, err)
			return
		}

		tx, err := ledger.Record(c.Request.Context(), core.TransactionInput{
			Date:        date,
			Description: strings.TrimSpace(req.Description),
			Magnitude:   amount,
			Type:        typ,
		})
		var verr *core.ValidationError
		switch {
		case errors.As(err, &verr):
			validationFailed(c, verr)
			return
		case err != nil:
			logger.ErrorContext(c.Request.Context(), "API save failed", log.FieldError, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": services.ErrSaveFailed.Error()})
			return
		}

		c.JSON(http.StatusCreated, toDTO(tx))
	}
}

func validationFailed(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
		body["error"] = verr.Err.Error()
	}
	c.JSON(http.StatusUnprocessableEntity, body)
}

// DeleteTransactionHandler removes a transaction. A missing id still answers
// 200 with deleted=false.
func DeleteTransactionHandler(ledger Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction id"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": ledger.Remove(c.Request.Context(), id)})
	}
}

func SummaryHandler(ledger Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := ledger.Summary(c.Request.Context())
		c.JSON(http.StatusOK, SummaryDTO{
			Balance:      s.Balance.StringFixed(2),
			TotalIncome:  s.TotalIncome.StringFixed(2),
			TotalExpense: s.TotalExpense.StringFixed(2),
			Formatted: FormattedSummary{
				Balance:      core.FormatAmount(s.Balance),
				TotalIncome:  core.FormatAmount(s.TotalIncome),
				TotalExpense: core.FormatAmount(s.TotalExpense),
			},
		})
	}
}

func BreakdownHandler(ledger Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		b := ledger.Summary(c.Request.Context()).Breakdown()
		out := make([]SliceDTO, 0, len(b.Slices))
		for _, s := range b.Slices {
			out = append(out, SliceDTO{
				Type:  s.Type.String(),
				Label: s.Type.Label(),
				Total: s.Total.StringFixed(2),
				Share: s.Share.StringFixed(1),
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

package handler

import (
	"time"

	financeapp "github.com/agencydesk/backend/internal/application/finance"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// FinanceHandler serves /finance: records, statements, reconciliation,
// fiscal-year close and exports
type FinanceHandler struct {
	BaseHandler
	records   *financeapp.RecordService
	reconcile *financeapp.ReconciliationService
	exports   *financeapp.ExportService
}

// NewFinanceHandler creates a FinanceHandler
func NewFinanceHandler(records *financeapp.RecordService, reconcile *financeapp.ReconciliationService, exports *financeapp.ExportService) *FinanceHandler {
	return &FinanceHandler{records: records, reconcile: reconcile, exports: exports}
}

type balanceSheetQuery struct {
	AsOf *time.Time `form:"as_of" time_format:"2006-01-02"`
}

type accountRequest struct {
	AccountID string `json:"account_id" form:"account_id"`
}

// RegisterRoutes mounts the finance routes
func (h *FinanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	finance := router.NewDomainGroup("/finance").
		GET("/summary", h.Summary).
		GET("/profit-loss", h.ProfitAndLoss).
		GET("/balance-sheet", h.BalanceSheet).
		GET("/cash-flow", h.CashFlow).
		POST("/fiscal-year/close", h.CloseFiscalYear).
		POST("/reset", h.Reset)

	finance.Group("/records").
		GET("", h.ListRecords).
		GET("/:id", h.GetRecord).
		POST("", h.CreateRecord).
		PUT("/:id", h.UpdateRecord).
		DELETE("/:id", h.DeleteRecord)

	finance.Group("/transactions").
		GET("", h.ListTransactions).
		POST("/import", h.ImportStatement).
		POST("/:id/match", h.Match).
		POST("/:id/unmatch", h.Unmatch)

	finance.Group("/reconciliation").
		POST("/auto-match", h.AutoMatch).
		GET("/report", h.ReconciliationReport)

	finance.Group("/export").
		GET("/quickbooks", h.ExportQuickBooks).
		GET("/report", h.ExportReport).
		GET("/template", h.ExportTemplate).
		GET("/closing/:year", h.ExportClosingReport)

	finance.RegisterRoutes(rg)
}

// ListRecords returns a page of financial records
func (h *FinanceHandler) ListRecords(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter financeapp.RecordListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.records.ListRecords(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetRecord returns one record
func (h *FinanceHandler) GetRecord(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "record")
	if !ok {
		return
	}

	record, err := h.records.GetRecord(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// CreateRecord adds a record
func (h *FinanceHandler) CreateRecord(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req financeapp.CreateRecordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	record, err := h.records.CreateRecord(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// UpdateRecord applies a partial update
func (h *FinanceHandler) UpdateRecord(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "record")
	if !ok {
		return
	}
	var req financeapp.UpdateRecordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	record, err := h.records.UpdateRecord(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// DeleteRecord removes a record
func (h *FinanceHandler) DeleteRecord(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "record")
	if !ok {
		return
	}

	if err := h.records.DeleteRecord(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Summary returns revenue, expenses and net income for ?from&to
func (h *FinanceHandler) Summary(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var period financeapp.PeriodQuery
	if !h.bindQuery(c, &period) {
		return
	}

	summary, err := h.records.GetSummary(c.Request.Context(), userID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ProfitAndLoss returns the profit and loss statement for ?from&to
func (h *FinanceHandler) ProfitAndLoss(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var period financeapp.PeriodQuery
	if !h.bindQuery(c, &period) {
		return
	}

	pnl, err := h.records.GetProfitAndLoss(c.Request.Context(), userID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pnl)
}

// BalanceSheet returns the balance sheet as of ?as_of, default today
func (h *FinanceHandler) BalanceSheet(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var q balanceSheetQuery
	if !h.bindQuery(c, &q) {
		return
	}
	var asOf time.Time
	if q.AsOf != nil {
		asOf = *q.AsOf
	}

	sheet, err := h.records.GetBalanceSheet(c.Request.Context(), userID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sheet)
}

// CashFlow returns the cash flow statement for ?from&to
func (h *FinanceHandler) CashFlow(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var period financeapp.PeriodQuery
	if !h.bindQuery(c, &period) {
		return
	}

	flow, err := h.records.GetCashFlow(c.Request.Context(), userID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, flow)
}

// CloseFiscalYear closes a year; the body must carry confirm=true
func (h *FinanceHandler) CloseFiscalYear(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req financeapp.CloseFiscalYearRequest
	if !h.bindJSON(c, &req) {
		return
	}

	report, err := h.records.CloseFiscalYear(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Reset deletes every record and bank transaction; requires confirm=true
func (h *FinanceHandler) Reset(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req financeapp.ResetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.records.ResetData(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListTransactions returns a page of bank transactions
func (h *FinanceHandler) ListTransactions(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter financeapp.TransactionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.reconcile.ListTransactions(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// ImportStatement loads a CSV bank statement from the multipart "file"
// part into the account named by the account_id form field
func (h *FinanceHandler) ImportStatement(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing statement file")
		return
	}
	src, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable statement file")
		return
	}
	defer src.Close()

	result, err := h.reconcile.ImportStatement(c.Request.Context(), userID, c.PostForm("account_id"), src)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AutoMatch pairs unmatched transactions of an account with records
func (h *FinanceHandler) AutoMatch(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req accountRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	result, err := h.reconcile.AutoMatch(c.Request.Context(), userID, req.AccountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Match links a transaction to a record by hand
func (h *FinanceHandler) Match(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "transaction")
	if !ok {
		return
	}
	var req financeapp.MatchRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tx, err := h.reconcile.Match(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Unmatch clears a transaction's match
func (h *FinanceHandler) Unmatch(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "transaction")
	if !ok {
		return
	}

	tx, err := h.reconcile.Unmatch(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// ReconciliationReport summarises matched and unmatched items of ?account_id
func (h *FinanceHandler) ReconciliationReport(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var q accountRequest
	if !h.bindQuery(c, &q) {
		return
	}

	report, err := h.reconcile.GetReport(c.Request.Context(), userID, q.AccountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ExportQuickBooks downloads the period's records as CSV or IIF (?format)
func (h *FinanceHandler) ExportQuickBooks(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var q financeapp.ExportQuery
	if !h.bindQuery(c, &q) {
		return
	}

	file, err := h.exports.QuickBooks(c.Request.Context(), userID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Attachment(c, file)
}

// ExportReport downloads the financial summary as CSV
func (h *FinanceHandler) ExportReport(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var period financeapp.PeriodQuery
	if !h.bindQuery(c, &period) {
		return
	}

	file, err := h.exports.ReportCSV(c.Request.Context(), userID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Attachment(c, file)
}

// ExportTemplate downloads the stored report template as JSON
func (h *FinanceHandler) ExportTemplate(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	file, err := h.exports.ReportTemplate(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Attachment(c, file)
}

// ExportClosingReport downloads a closed year's report as JSON
func (h *FinanceHandler) ExportClosingReport(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	year, ok := h.pathInt(c, "year")
	if !ok {
		return
	}

	file, err := h.exports.ClosingReport(c.Request.Context(), userID, year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Attachment(c, file)
}

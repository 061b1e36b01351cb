package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// withCommon extends fields with the columns every owned table has
func withCommon(fields ...string) map[string]bool {
	m := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
	}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// CommonSortFields contains fields common to every owned table
var CommonSortFields = withCommon()

// ClientSortFields contains allowed sort fields for clients
var ClientSortFields = withCommon("name", "email", "company", "industry", "status",
	"total_revenue", "outstanding_balance", "project_count")

// ProjectSortFields contains allowed sort fields for projects
var ProjectSortFields = withCommon("name", "status", "priority", "start_date", "end_date",
	"budget", "spent", "progress")

// TaskSortFields contains allowed sort fields for tasks
var TaskSortFields = withCommon("title", "status", "priority", "due_date", "completed_at",
	"estimated_hours", "actual_hours")

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = withCommon("invoice_number", "status", "issue_date", "due_date",
	"total", "amount_due")

// EventSortFields contains allowed sort fields for calendar events
var EventSortFields = withCommon("title", "start_time", "end_time", "event_type")

// BookingSortFields contains allowed sort fields for bookings
var BookingSortFields = withCommon("client_name", "start_time", "status", "price")

// FileSortFields contains allowed sort fields for files
var FileSortFields = withCommon("name", "mime_type", "size")

// ConversationSortFields contains allowed sort fields for conversations
var ConversationSortFields = withCommon("last_message_at", "title")

// NotificationSortFields contains allowed sort fields for notifications
var NotificationSortFields = withCommon("category", "type", "is_read")

// RecordSortFields contains allowed sort fields for financial records
var RecordSortFields = withCommon("date", "amount", "category", "record_type")

// BankTransactionSortFields contains allowed sort fields for bank transactions
var BankTransactionSortFields = withCommon("date", "amount", "account_id")

// LeadSortFields contains allowed sort fields for leads
var LeadSortFields = withCommon("name", "company", "status", "score", "estimated_value",
	"last_contacted_at")

// CampaignSortFields contains allowed sort fields for campaigns
var CampaignSortFields = withCommon("name", "status", "campaign_type", "budget", "spent",
	"start_date", "scheduled_at")

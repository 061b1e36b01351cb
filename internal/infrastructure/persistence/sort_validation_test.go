package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"DESC uppercase returns DESC", "DESC", "DESC"},
		{"desc lowercase returns DESC", "DESC", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE users;--", "DESC"},
		{"whitespace only returns DESC", "   ", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSortOrder(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidateSortField(t *testing.T) {
	allowedFields := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
		"name":       true,
	}

	tests := []struct {
		name         string
		input        string
		allowedMap   map[string]bool
		defaultField string
		expected     string
	}{
		{"empty string returns default", "", allowedFields, "created_at", "created_at"},
		{"valid field returns field", "name", allowedFields, "created_at", "name"},
		{"valid field id returns field", "id", allowedFields, "created_at", "id"},
		{"invalid field returns default", "invalid_field", allowedFields, "created_at", "created_at"},
		{"sql injection attempt returns default", "id; DROP TABLE users;--", allowedFields, "created_at", "created_at"},
		{"case sensitive - uppercase invalid", "NAME", allowedFields, "created_at", "created_at"},
		{"whitespace only returns default", "   ", allowedFields, "created_at", "created_at"},
		{"whitespace around valid field returns field", "  name  ", allowedFields, "created_at", "name"},
		{"field with spaces injection returns default", "name users", allowedFields, "created_at", "created_at"},
		{"field with quotes injection returns default", "name'--", allowedFields, "created_at", "created_at"},
		{"empty default with valid field", "name", allowedFields, "", "name"},
		{"empty default with invalid field", "invalid", allowedFields, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSortField(tt.input, tt.allowedMap, tt.defaultField)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEntitySortFields(t *testing.T) {
	tables := map[string]map[string]bool{
		"clients":           ClientSortFields,
		"projects":          ProjectSortFields,
		"tasks":             TaskSortFields,
		"invoices":          InvoiceSortFields,
		"calendar_events":   EventSortFields,
		"bookings":          BookingSortFields,
		"user_files":        FileSortFields,
		"conversations":     ConversationSortFields,
		"notifications":     NotificationSortFields,
		"financial_records": RecordSortFields,
		"bank_transactions": BankTransactionSortFields,
		"leads":             LeadSortFields,
		"campaigns":         CampaignSortFields,
	}

	for name, fields := range tables {
		t.Run(name, func(t *testing.T) {
			for _, common := range []string{"id", "created_at", "updated_at"} {
				assert.True(t, fields[common], "missing %s", common)
			}
			assert.False(t, fields["user_id"])
			assert.Equal(t, "created_at", ValidateSortField("user_id", fields, "created_at"))
		})
	}

	assert.Equal(t, "due_date", ValidateSortField("due_date", TaskSortFields, "created_at"))
	assert.Equal(t, "score", ValidateSortField("score", LeadSortFields, "created_at"))
}

package settings

import (
	"encoding/json"

	"github.com/agencydesk/backend/internal/domain/settings"
)

// migrateQuickBooksV1 renames the v1 "mapping" field and fills the
// accounts and date format that v1 did not store.
func migrateQuickBooksV1(value json.RawMessage) (json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(value, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}
	if m, ok := doc["mapping"]; ok {
		if _, exists := doc["account_mapping"]; !exists {
			doc["account_mapping"] = m
		}
		delete(doc, "mapping")
	}
	defaults := settings.DefaultQuickBooksExport()
	fill := func(field, v string) error {
		if _, ok := doc[field]; ok {
			return nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		doc[field] = b
		return nil
	}
	for field, v := range map[string]string{
		"date_format":     defaults.DateFormat,
		"income_account":  defaults.IncomeAccount,
		"expense_account": defaults.ExpenseAccount,
		"bank_account":    defaults.BankAccount,
	} {
		if err := fill(field, v); err != nil {
			return nil, err
		}
	}
	return json.Marshal(doc)
}

package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowError(t *testing.T) {
	assert.Equal(t, "row 5, column 'amount': bad", RowError{Row: 5, Column: "amount", Message: "bad"}.Error())
	assert.Equal(t, "row 10: malformed row", RowError{Row: 10, Message: "malformed row"}.Error())
}

func TestErrorCollection(t *testing.T) {
	ec := NewErrorCollection(2)
	assert.Empty(t, ec.Errors())

	for i := 1; i <= 4; i++ {
		ec.Add(RowError{Row: i, Code: ErrCodeInvalidAmount})
	}
	assert.Len(t, ec.Errors(), 2)
	assert.Equal(t, 4, ec.TotalCount())
	assert.True(t, ec.Truncated())
	assert.Equal(t, map[int]bool{1: true, 2: true}, ec.Rows())
}

func TestMissingColumnsError(t *testing.T) {
	err := &MissingColumnsError{Columns: []string{"date", "amount"}}
	assert.Contains(t, err.Error(), "date")
	assert.Contains(t, err.Error(), "amount")
}

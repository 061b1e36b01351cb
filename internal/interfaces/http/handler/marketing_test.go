package handler

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	marketingapp "github.com/agencydesk/backend/internal/application/marketing"
	"github.com/agencydesk/backend/internal/infrastructure/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, body string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestMarketingHandler_ExportLeads(t *testing.T) {
	s := newTestServer(t)
	for _, lead := range []map[string]any{
		{"name": "Ada Lovelace", "email": "ada@example.test", "source": "referral", "score": 80},
		{"name": "Grace Hopper", "email": "grace@example.test", "source": "website", "score": 40},
	} {
		w := s.do(t, http.MethodPost, "/api/v1/marketing/leads", lead)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	t.Run("query filter", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/admin/marketing/leads/export", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

		rows := readCSV(t, w.Body.String())
		require.Len(t, rows, 3)
		assert.Equal(t, export.LeadsCSVHeader, rows[0])
	})

	t.Run("json filter", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/admin/marketing/leads/export", map[string]any{"search": "Ada"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		rows := readCSV(t, w.Body.String())
		require.Len(t, rows, 2)
		assert.Equal(t, "Ada Lovelace", rows[1][0])
	})

	t.Run("invalid filter", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/admin/marketing/leads/export", map[string]any{"min_score": 400})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMarketingHandler_ABTest(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/v1/marketing/campaigns", map[string]any{"name": "Spring launch", "campaign_type": "email"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	campaign := dataAs[marketingapp.CampaignResponse](t, w)
	path := "/api/v1/admin/marketing/campaigns/" + campaign.ID.String() + "/ab-test"

	w = s.do(t, http.MethodPost, path, map[string]any{"variants": []map[string]any{
		{"name": "A", "subject": "Hello", "weight": 60},
		{"name": "B", "subject": "Hi there", "weight": 40},
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := dataAs[marketingapp.CampaignResponse](t, w)
	require.NotNil(t, updated.ABTest)
	assert.Len(t, updated.ABTest.Variants, 2)

	tests := []struct {
		name     string
		variants []map[string]any
		code     string
	}{
		{"single variant", []map[string]any{{"name": "A", "weight": 100}}, "VALIDATION_ERROR"},
		{"weights off", []map[string]any{{"name": "A", "weight": 50}, {"name": "B", "weight": 20}}, "INVALID_VARIANTS"},
		{"duplicate names", []map[string]any{{"name": "A", "weight": 50}, {"name": "A", "weight": 50}}, "INVALID_VARIANTS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, path, map[string]any{"variants": tt.variants})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}

	w = s.do(t, http.MethodPost, "/api/v1/admin/marketing/campaigns/bad/ab-test", map[string]any{})
	assert.Equal(t, "INVALID_ID", errorCode(t, w))
}

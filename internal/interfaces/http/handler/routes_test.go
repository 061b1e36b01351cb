package handler

import (
	"net/http"
	"testing"

	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// mountAll registers every handler without services behind them
func mountAll() (*gin.Engine, *router.Router) {
	engine := gin.New()
	r := router.NewRouter(engine, router.WithMiddleware(fakeAuth())).Register(
		NewClientHandler(nil),
		NewWorkHandler(nil, nil),
		NewInvoiceHandler(nil),
		NewSchedulingHandler(nil, nil),
		NewFileHandler(nil),
		NewMessagingHandler(nil),
		NewNotificationHandler(nil),
		NewFinanceHandler(nil, nil, nil),
		NewMarketingHandler(nil, nil),
		NewAnalyticsHandler(nil),
		NewIntegrationHandler(nil, nil),
		NewSettingsHandler(nil),
	)
	r.Setup()
	return engine, r
}

func TestRoutes_Mounted(t *testing.T) {
	_, r := mountAll()
	routes := map[router.RouteInfo]bool{}
	for _, ri := range r.Routes() {
		routes[ri] = true
	}

	want := []router.RouteInfo{
		{Method: http.MethodGet, Path: "/api/v1/clients"},
		{Method: http.MethodPost, Path: "/api/v1/projects/:id/restore"},
		{Method: http.MethodDelete, Path: "/api/v1/projects/:id/permanent"},
		{Method: http.MethodPatch, Path: "/api/v1/tasks/:id/status"},
		{Method: http.MethodPost, Path: "/api/v1/invoices/:id/payments"},
		{Method: http.MethodPost, Path: "/api/v1/bookings/:id/confirm"},
		{Method: http.MethodGet, Path: "/api/v1/files/:id/download"},
		{Method: http.MethodPut, Path: "/api/v1/conversations/:id/messages/:messageId"},
		{Method: http.MethodPost, Path: "/api/v1/notifications/read-all"},
		{Method: http.MethodPost, Path: "/api/v1/finance/transactions/import"},
		{Method: http.MethodPost, Path: "/api/v1/finance/reconciliation/auto-match"},
		{Method: http.MethodGet, Path: "/api/v1/finance/export/closing/:year"},
		{Method: http.MethodPost, Path: "/api/v1/admin/marketing/leads/export"},
		{Method: http.MethodPost, Path: "/api/v1/admin/marketing/campaigns/:id/ab-test"},
		{Method: http.MethodGet, Path: "/api/v1/analytics/dashboard"},
		{Method: http.MethodPost, Path: "/api/v1/banking/plaid/link-token"},
		{Method: http.MethodPost, Path: "/api/v1/banking/plaid/exchange-token"},
		{Method: http.MethodGet, Path: "/api/v1/banking/accounts"},
		{Method: http.MethodPost, Path: "/api/v1/banking/accounts/:id/sync"},
		{Method: http.MethodDelete, Path: "/api/v1/banking/accounts/:id"},
		{Method: http.MethodGet, Path: "/api/v1/integrations/xero/authorize"},
		{Method: http.MethodGet, Path: "/api/v1/integrations/xero/callback"},
		{Method: http.MethodDelete, Path: "/api/v1/integrations/xero"},
		{Method: http.MethodPost, Path: "/api/v1/settings/migrate"},
	}
	for _, ri := range want {
		assert.True(t, routes[ri], "missing %s %s", ri.Method, ri.Path)
	}
}

// Every route checks the user before touching its service
func TestRoutes_RequireUser(t *testing.T) {
	engine, r := mountAll()
	id := uuid.NewString()

	for _, ri := range r.Routes() {
		path := ri.Path
		for _, param := range []string{":id", ":messageId"} {
			path = replaceParam(path, param, id)
		}
		path = replaceParam(path, ":year", "2024")
		path = replaceParam(path, ":key", "reports.template")

		t.Run(ri.Method+" "+ri.Path, func(t *testing.T) {
			w := doRaw(engine, ri.Method, path)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "UNAUTHENTICATED", errorCode(t, w))
		})
	}
}

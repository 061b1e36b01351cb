package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	billingapp "github.com/agencydesk/backend/internal/application/billing"
	crmapp "github.com/agencydesk/backend/internal/application/crm"
	filesapp "github.com/agencydesk/backend/internal/application/files"
	financeapp "github.com/agencydesk/backend/internal/application/finance"
	marketingapp "github.com/agencydesk/backend/internal/application/marketing"
	settingsapp "github.com/agencydesk/backend/internal/application/settings"
	"github.com/agencydesk/backend/internal/infrastructure/event"
	"github.com/agencydesk/backend/internal/infrastructure/persistence"
	"github.com/agencydesk/backend/internal/infrastructure/secrets"
	"github.com/agencydesk/backend/internal/infrastructure/storage"
	"github.com/agencydesk/backend/internal/interfaces/http/middleware"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/agencydesk/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testUserHeader stands in for a bearer token
const testUserHeader = "X-Test-User"

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// fakeAuth sets the user the way the JWT middleware does
func fakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(testUserHeader); id != "" {
			c.Set(middleware.UserIDKey, id)
		}
		c.Next()
	}
}

type testServer struct {
	engine  *gin.Engine
	storage *storage.MemoryObjectStorage
	user    uuid.UUID
}

// newTestServer mounts the handlers over sqlite backed services
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	qc, _ := testutil.NewQueryClient()
	bus := event.NewBus(zap.NewNop())
	log := zap.NewNop()

	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	sealer, err := secrets.NewSealer(key)
	require.NoError(t, err)
	store := settingsapp.NewStore(persistence.NewGormSettingsRepository(db), qc, settingsapp.WithSealer(sealer))

	clientRepo := persistence.NewGormClientRepository(db)
	records := persistence.NewGormRecordRepository(db)
	txs := persistence.NewGormBankTransactionRepository(db)
	uow := persistence.NewGormFinanceUnitOfWork(db)
	leads := persistence.NewGormLeadRepository(db)
	objects := storage.NewMemoryObjectStorage()

	engine := gin.New()
	router.NewRouter(engine, router.WithMiddleware(middleware.RequestID(), fakeAuth())).
		Register(
			NewClientHandler(crmapp.NewClientService(clientRepo, qc)),
			NewInvoiceHandler(billingapp.NewInvoiceService(persistence.NewGormInvoiceRepository(db), qc, bus, log)),
			NewFileHandler(filesapp.NewFileService(persistence.NewGormFileRepository(db), persistence.NewGormFolderRepository(db), objects, qc, log)),
			NewFinanceHandler(
				financeapp.NewRecordService(records, txs, uow, qc, log),
				financeapp.NewReconciliationService(records, txs, uow, qc, log),
				financeapp.NewExportService(records, store, log),
			),
			NewMarketingHandler(
				marketingapp.NewLeadService(leads, clientRepo, qc, bus, log),
				marketingapp.NewCampaignService(persistence.NewGormCampaignRepository(db), leads, qc),
			),
			NewSettingsHandler(store),
		).
		Setup()

	return &testServer{engine: engine, storage: objects, user: testutil.TestUserID}
}

// do sends a request as the server's user; body is JSON encoded unless
// it is already a reader
func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return s.doAs(t, s.user, method, path, body)
}

func (s *testServer) doAs(t *testing.T, user uuid.UUID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		r = b
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != uuid.Nil {
		req.Header.Set(testUserHeader, user.String())
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// envelope decodes the standard response
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
	Error *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// dataAs decodes the data field of a successful response into T
func dataAs[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w)
	require.False(t, env.Success, w.Body.String())
	require.NotNil(t, env.Error)
	return env.Error.Code
}

func doRaw(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func replaceParam(path, param, value string) string {
	return strings.ReplaceAll(path, param, value)
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/infrastructure/export"
	"github.com/agencydesk/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseHandler_CurrentUser(t *testing.T) {
	h := &BaseHandler{}

	t.Run("missing user answers 401", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		tc.SetRequestID("req-1")

		_, ok := h.currentUser(tc.Context)

		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, tc.ResponseCode())
		testutil.AssertErrorResponse(t, tc, "UNAUTHENTICATED")
		assert.Contains(t, string(tc.ResponseBody()), "User not authenticated")
		assert.Contains(t, string(tc.ResponseBody()), "req-1")
	})

	t.Run("malformed user answers 401", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		tc.Context.Set("user_id", "not-a-uuid")

		_, ok := h.currentUser(tc.Context)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, tc.ResponseCode())
	})

	t.Run("authenticated", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		tc.SetUserID(testutil.TestUserID)

		id, ok := h.currentUser(tc.Context)
		assert.True(t, ok)
		assert.Equal(t, testutil.TestUserID, id)
	})
}

func TestBaseHandler_PathID(t *testing.T) {
	h := &BaseHandler{}

	tc := testutil.NewTestContext(t)
	tc.Context.Params = gin.Params{{Key: "id", Value: "42"}}
	_, ok := h.pathID(tc.Context, "id", "invoice")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, tc.ResponseCode())
	testutil.AssertErrorResponse(t, tc, "INVALID_ID")
	assert.Contains(t, string(tc.ResponseBody()), "Invalid invoice ID format")

	want := uuid.New()
	tc = testutil.NewTestContext(t)
	tc.Context.Params = gin.Params{{Key: "id", Value: want.String()}}
	got, ok := h.pathID(tc.Context, "id", "invoice")
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestBaseHandler_HandleError(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", shared.NewNotFoundError("Client"), http.StatusNotFound, "NOT_FOUND", "Client not found"},
		{"wrapped domain error", errors.Join(errors.New("ctx"), shared.ErrInvalidState), http.StatusUnprocessableEntity, shared.ErrInvalidState.Code, shared.ErrInvalidState.Message},
		{"code family", shared.NewDomainError("INVALID_VARIANTS", "bad"), http.StatusBadRequest, "INVALID_VARIANTS", "bad"},
		{"unexpected error passes through", fmt.Errorf("list clients: %w", errors.New("connection reset")), http.StatusInternalServerError, "INTERNAL_ERROR", "list clients: connection reset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContext(t)

			h.HandleError(tc.Context, tt.err)

			assert.Equal(t, tt.status, tc.ResponseCode())
			testutil.AssertErrorResponse(t, tc, tt.code)
			assert.Contains(t, string(tc.ResponseBody()), tt.message)
		})
	}

	t.Run("release mode hides internals", func(t *testing.T) {
		mode := gin.Mode()
		gin.SetMode(gin.ReleaseMode)
		defer gin.SetMode(mode)

		tc := testutil.NewTestContext(t)
		h.HandleError(tc.Context, errors.New("pq: relation \"clients\" does not exist"))

		assert.Equal(t, http.StatusInternalServerError, tc.ResponseCode())
		testutil.AssertErrorResponse(t, tc, "INTERNAL_ERROR")
		assert.Contains(t, string(tc.ResponseBody()), "An unexpected error occurred")
		assert.NotContains(t, string(tc.ResponseBody()), "relation")
	})
}

func TestBaseHandler_Attachment(t *testing.T) {
	h := &BaseHandler{}
	tc := testutil.NewTestContext(t)

	h.Attachment(tc.Context, export.File{Filename: "report.csv", ContentType: "text/csv", Body: []byte("a,b\n")})

	assert.Equal(t, http.StatusOK, tc.ResponseCode())
	assert.Equal(t, `attachment; filename="report.csv"`, tc.Recorder.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", tc.Recorder.Header().Get("Content-Type"))
	assert.Equal(t, "a,b\n", tc.Recorder.Body.String())
}

func TestRespondPage(t *testing.T) {
	tc := testutil.NewTestContext(t)

	respondPage(tc.Context, shared.NewPaginated([]string{"x"}, 21, 2, 10))

	resp := testutil.JSONResponse(t, tc)
	assert.Equal(t, true, resp["success"])
	meta, ok := resp["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(21), meta["total"])
	assert.Equal(t, float64(3), meta["total_pages"])
}

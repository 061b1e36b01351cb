package handler

import (
	"net/http"
	"testing"

	crmapp "github.com/agencydesk/backend/internal/application/crm"
	"github.com/agencydesk/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientHandler_CRUD(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/clients", map[string]any{
		"name":     "Acme Studio",
		"email":    "hello@acme.test",
		"industry": "design",
		"tags":     []string{"retainer"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := dataAs[crmapp.ClientResponse](t, w)
	assert.Equal(t, "Acme Studio", created.Name)
	assert.Equal(t, s.user, created.UserID)

	w = s.do(t, http.MethodGet, "/api/v1/clients/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello@acme.test", dataAs[crmapp.ClientResponse](t, w).Email)

	w = s.do(t, http.MethodPut, "/api/v1/clients/"+created.ID.String(), map[string]any{"company": "Acme LLC"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Acme LLC", dataAs[crmapp.ClientResponse](t, w).Company)

	w = s.do(t, http.MethodGet, "/api/v1/clients?search=acme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)

	w = s.do(t, http.MethodDelete, "/api/v1/clients/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/clients/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestClientHandler_Isolation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/clients", map[string]any{"name": "Private"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := dataAs[crmapp.ClientResponse](t, w).ID

	w = s.doAs(t, testutil.OtherUserID, http.MethodGet, "/api/v1/clients/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doAs(t, testutil.OtherUserID, http.MethodGet, "/api/v1/clients", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode(t, w).Meta.Total)
}

func TestClientHandler_Rejections(t *testing.T) {
	s := newTestServer(t)

	t.Run("unauthenticated", func(t *testing.T) {
		w := s.doAs(t, uuid.Nil, http.MethodGet, "/api/v1/clients", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHENTICATED", errorCode(t, w))
	})

	t.Run("unauthenticated before validation", func(t *testing.T) {
		w := s.doAs(t, uuid.Nil, http.MethodPost, "/api/v1/clients", map[string]any{})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/clients/123", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_ID", errorCode(t, w))
	})

	t.Run("missing name", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/clients", map[string]any{"email": "x@y.test"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		require.NotEmpty(t, env.Error.Details)
		assert.Equal(t, "name", env.Error.Details[0].Field)
	})

	t.Run("bad email", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/clients", map[string]any{"name": "A", "email": "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	})

	t.Run("unknown route", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/nothing-here", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "ROUTE_NOT_FOUND", errorCode(t, w))
	})
}

package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	filesapp "github.com/agencydesk/backend/internal/application/files"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upload(t *testing.T, s *testServer, name string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if name != "" {
		part, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(testUserHeader, s.user.String())
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestFileHandler_UploadAndDownload(t *testing.T) {
	s := newTestServer(t)

	w := upload(t, s, "brief.txt", []byte("project brief"), map[string]string{"tags": "client, ,draft"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	file := dataAs[filesapp.FileResponse](t, w)
	assert.Equal(t, "brief.txt", file.Name)
	assert.Equal(t, int64(len("project brief")), file.Size)
	assert.Equal(t, []string{"client", "draft"}, file.Tags)
	assert.True(t, s.storage.Exists(file.StoragePath))

	w = s.do(t, http.MethodGet, "/api/v1/files/"+file.ID.String()+"/download?inline=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "project brief", w.Body.String())
	assert.Equal(t, `inline; filename="brief.txt"`, w.Header().Get("Content-Disposition"))

	w = s.do(t, http.MethodGet, "/api/v1/files/"+file.ID.String()+"/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	link := dataAs[filesapp.DownloadResponse](t, w)
	assert.NotEmpty(t, link.URL)
	assert.NotNil(t, link.ExpiresAt)
}

func TestFileHandler_TrashCycle(t *testing.T) {
	s := newTestServer(t)
	w := upload(t, s, "logo.png", []byte{0x89, 'P', 'N', 'G'}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	file := dataAs[filesapp.FileResponse](t, w)

	w = s.do(t, http.MethodPost, "/api/v1/files/"+file.ID.String()+"/trash", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, dataAs[filesapp.FileResponse](t, w).IsDeleted)

	w = s.do(t, http.MethodGet, "/api/v1/files/trash", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataAs[[]filesapp.FileResponse](t, w), 1)

	w = s.do(t, http.MethodPost, "/api/v1/files/"+file.ID.String()+"/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, dataAs[filesapp.FileResponse](t, w).IsDeleted)

	w = s.do(t, http.MethodDelete, "/api/v1/files/"+file.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, s.storage.Exists(file.StoragePath))
}

func TestFileHandler_UploadRejections(t *testing.T) {
	s := newTestServer(t)

	w := upload(t, s, "", nil, map[string]string{"tags": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, w))

	w = upload(t, s, "a.txt", []byte("a"), map[string]string{"folder_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

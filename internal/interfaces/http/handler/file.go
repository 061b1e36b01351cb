package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	filesapp "github.com/agencydesk/backend/internal/application/files"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileHandler serves /files and /folders
type FileHandler struct {
	BaseHandler
	files *filesapp.FileService
}

// NewFileHandler creates a FileHandler
func NewFileHandler(files *filesapp.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// RegisterRoutes mounts the file and folder routes
func (h *FileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/files").
		GET("", h.List).
		GET("/stats", h.Stats).
		GET("/trash", h.ListTrash).
		DELETE("/trash", h.EmptyTrash).
		GET("/:id", h.Get).
		GET("/:id/download", h.Download).
		POST("", h.Upload).
		PUT("/:id", h.Update).
		POST("/:id/trash", h.Trash).
		POST("/:id/restore", h.Restore).
		DELETE("/:id", h.Delete).
		RegisterRoutes(rg)

	router.NewDomainGroup("/folders").
		GET("", h.ListFolders).
		POST("", h.CreateFolder).
		PUT("/:id", h.UpdateFolder).
		DELETE("/:id", h.DeleteFolder).
		RegisterRoutes(rg)
}

// List returns a page of files outside the trash
func (h *FileHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter filesapp.FileListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.files.ListFiles(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Get returns one file's metadata
func (h *FileHandler) Get(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "file")
	if !ok {
		return
	}

	file, err := h.files.GetFile(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, file)
}

// Upload stores a multipart "file" part. Optional form fields are
// folder_id and tags (comma separated).
func (h *FileHandler) Upload(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file upload")
		return
	}
	src, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable file upload")
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		h.BadRequest(c, "Unreadable file upload")
		return
	}

	req := filesapp.UploadFileRequest{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	if raw := c.PostForm("folder_id"); raw != "" {
		folderID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid folder ID format")
			return
		}
		req.FolderID = &folderID
	}
	if raw := c.PostForm("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Tags = append(req.Tags, tag)
			}
		}
	}

	file, err := h.files.UploadFile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, file)
}

// Download returns a presigned URL, or streams the bytes with ?inline=true
func (h *FileHandler) Download(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "file")
	if !ok {
		return
	}
	inline, _ := strconv.ParseBool(c.Query("inline"))

	resp, err := h.files.DownloadFile(c.Request.Context(), userID, id, inline)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !inline {
		h.Success(c, resp)
		return
	}
	name := strings.ReplaceAll(resp.File.Name, `"`, "")
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, name))
	c.Data(http.StatusOK, resp.File.MimeType, resp.Data)
}

// Update renames, moves, tags or stars a file
func (h *FileHandler) Update(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "file")
	if !ok {
		return
	}
	var req filesapp.UpdateFileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	file, err := h.files.UpdateFile(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, file)
}

// Trash moves a file to the trash
func (h *FileHandler) Trash(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "file")
	if !ok {
		return
	}

	file, err := h.files.TrashFile(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, file)
}

// Restore takes a file out of the trash
func (h *FileHandler) Restore(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "file")
	if !ok {
		return
	}

	file, err := h.files.RestoreFile(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, file)
}

// Delete removes the blob and the row
func (h *FileHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "file")
	if !ok {
		return
	}

	if err := h.files.PermanentlyDeleteFile(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListTrash returns the trashed files
func (h *FileHandler) ListTrash(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	items, err := h.files.ListTrash(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// EmptyTrash permanently deletes every trashed file
func (h *FileHandler) EmptyTrash(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	result, err := h.files.EmptyTrash(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Stats returns counts and bytes per kind
func (h *FileHandler) Stats(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.files.GetFileStats(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ListFolders returns every folder of the user
func (h *FileHandler) ListFolders(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	folders, err := h.files.ListFolders(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, folders)
}

// CreateFolder adds a folder
func (h *FileHandler) CreateFolder(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req filesapp.CreateFolderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	folder, err := h.files.CreateFolder(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, folder)
}

// UpdateFolder renames or recolours a folder
func (h *FileHandler) UpdateFolder(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "folder")
	if !ok {
		return
	}
	var req filesapp.UpdateFolderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	folder, err := h.files.UpdateFolder(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, folder)
}

// DeleteFolder removes a folder; its files move to the root
func (h *FileHandler) DeleteFolder(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "folder")
	if !ok {
		return
	}

	if err := h.files.DeleteFolder(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

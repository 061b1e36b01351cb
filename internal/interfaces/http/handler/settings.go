package handler

import (
	"encoding/json"

	settingsapp "github.com/agencydesk/backend/internal/application/settings"
	"github.com/agencydesk/backend/internal/domain/settings"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// managedSettings are written only by their integration services
var managedSettings = map[settings.Key]bool{
	settings.KeyXeroConnection:    true,
	settings.KeyConnectedAccounts: true,
}

// SettingResponse is one setting value
type SettingResponse struct {
	Key   settings.Key    `json:"key"`
	Value json.RawMessage `json:"value"`
}

// SettingsHandler serves /settings
type SettingsHandler struct {
	BaseHandler
	store *settingsapp.Store
}

// NewSettingsHandler creates a SettingsHandler
func NewSettingsHandler(store *settingsapp.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// RegisterRoutes mounts the settings routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/settings").
		GET("", h.List).
		POST("/migrate", h.Migrate).
		GET("/:key", h.Get).
		PUT("/:key", h.Put).
		DELETE("/:key", h.Delete).
		RegisterRoutes(rg)
}

// key resolves the :key parameter. Unregistered keys are rejected here.
func (h *SettingsHandler) key(c *gin.Context) (settings.Key, bool) {
	key := settings.Key(c.Param("key"))
	if !h.store.Registered(key) {
		h.HandleError(c, settingsapp.ErrUnknownKey)
		return "", false
	}
	return key, true
}

// List returns every stored setting; secret values are omitted
func (h *SettingsHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	entries, err := h.store.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Get returns one non-secret setting
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	key, ok := h.key(c)
	if !ok {
		return
	}
	if h.store.IsSecret(key) {
		h.Forbidden(c, "Secret settings cannot be read")
		return
	}

	value, found, err := h.store.Raw(c.Request.Context(), userID, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !found {
		h.HandleError(c, settings.ErrSettingNotFound)
		return
	}
	h.Success(c, SettingResponse{Key: key, Value: value})
}

// Put replaces a setting with the raw JSON body
func (h *SettingsHandler) Put(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	key, ok := h.key(c)
	if !ok {
		return
	}
	if managedSettings[key] {
		h.Forbidden(c, "Setting is managed by its integration")
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "Unreadable request body")
		return
	}

	if err := h.store.SetRaw(c.Request.Context(), userID, key, body); err != nil {
		h.HandleError(c, err)
		return
	}
	resp := SettingResponse{Key: key}
	if !h.store.IsSecret(key) {
		resp.Value = body
	}
	h.Success(c, resp)
}

// Delete removes a setting
func (h *SettingsHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	key, ok := h.key(c)
	if !ok {
		return
	}
	if managedSettings[key] {
		h.Forbidden(c, "Setting is managed by its integration")
		return
	}

	if err := h.store.Delete(c.Request.Context(), userID, key); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Migrate upgrades every stale setting of the user
func (h *SettingsHandler) Migrate(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	n, err := h.store.Migrate(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"migrated": n})
}

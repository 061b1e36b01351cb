package handler

import (
	marketingapp "github.com/agencydesk/backend/internal/application/marketing"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// MarketingHandler serves /marketing and /admin/marketing
type MarketingHandler struct {
	BaseHandler
	leads     *marketingapp.LeadService
	campaigns *marketingapp.CampaignService
}

// NewMarketingHandler creates a MarketingHandler
func NewMarketingHandler(leads *marketingapp.LeadService, campaigns *marketingapp.CampaignService) *MarketingHandler {
	return &MarketingHandler{leads: leads, campaigns: campaigns}
}

// RegisterRoutes mounts the lead, campaign and admin routes
func (h *MarketingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	marketing := router.NewDomainGroup("/marketing").
		GET("/stats", h.Stats)

	marketing.Group("/leads").
		GET("", h.ListLeads).
		GET("/:id", h.GetLead).
		POST("", h.CreateLead).
		PUT("/:id", h.UpdateLead).
		PATCH("/:id/status", h.TransitionLead).
		POST("/:id/convert", h.ConvertLead).
		DELETE("/:id", h.DeleteLead)

	marketing.Group("/campaigns").
		GET("", h.ListCampaigns).
		GET("/:id", h.GetCampaign).
		POST("", h.CreateCampaign).
		PUT("/:id", h.UpdateCampaign).
		PATCH("/:id/status", h.TransitionCampaign).
		POST("/:id/schedule", h.ScheduleCampaign).
		POST("/:id/launch", h.LaunchCampaign).
		DELETE("/:id", h.DeleteCampaign)

	marketing.RegisterRoutes(rg)

	admin := router.NewDomainGroup("/admin/marketing")
	admin.Group("/leads").POST("/export", h.ExportLeads)
	admin.Group("/campaigns").POST("/:id/ab-test", h.CreateABTest)
	admin.RegisterRoutes(rg)
}

// ListLeads returns a page of leads for the selected tab
func (h *MarketingHandler) ListLeads(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter marketingapp.LeadListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.leads.ListLeads(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetLead returns one lead
func (h *MarketingHandler) GetLead(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "lead")
	if !ok {
		return
	}

	lead, err := h.leads.GetLead(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// CreateLead adds a lead
func (h *MarketingHandler) CreateLead(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req marketingapp.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.leads.CreateLead(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, lead)
}

// UpdateLead applies a partial update
func (h *MarketingHandler) UpdateLead(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "lead")
	if !ok {
		return
	}
	var req marketingapp.UpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.leads.UpdateLead(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// TransitionLead moves a lead through the pipeline
func (h *MarketingHandler) TransitionLead(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "lead")
	if !ok {
		return
	}
	var req marketingapp.LeadStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.leads.TransitionLead(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// ConvertLead turns a qualified lead into a client
func (h *MarketingHandler) ConvertLead(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "lead")
	if !ok {
		return
	}

	result, err := h.leads.ConvertLead(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DeleteLead removes a lead
func (h *MarketingHandler) DeleteLead(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "lead")
	if !ok {
		return
	}

	if err := h.leads.DeleteLead(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ExportLeads downloads the filtered leads as CSV. The filter comes from
// the JSON body, or the query string when the body is empty.
func (h *MarketingHandler) ExportLeads(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter marketingapp.LeadListFilter
	if c.Request.ContentLength > 0 {
		if !h.bindJSON(c, &filter) {
			return
		}
	} else if !h.bindQuery(c, &filter) {
		return
	}

	file, err := h.leads.ExportLeads(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Attachment(c, file)
}

// ListCampaigns returns a page of campaigns
func (h *MarketingHandler) ListCampaigns(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var filter marketingapp.CampaignListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.campaigns.ListCampaigns(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetCampaign returns one campaign
func (h *MarketingHandler) GetCampaign(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "campaign")
	if !ok {
		return
	}

	campaign, err := h.campaigns.GetCampaign(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, campaign)
}

// CreateCampaign adds a draft campaign
func (h *MarketingHandler) CreateCampaign(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req marketingapp.CreateCampaignRequest
	if !h.bindJSON(c, &req) {
		return
	}

	campaign, err := h.campaigns.CreateCampaign(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, campaign)
}

// UpdateCampaign applies a partial update
func (h *MarketingHandler) UpdateCampaign(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "campaign")
	if !ok {
		return
	}
	var req marketingapp.UpdateCampaignRequest
	if !h.bindJSON(c, &req) {
		return
	}

	campaign, err := h.campaigns.UpdateCampaign(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, campaign)
}

// TransitionCampaign moves a campaign to an explicit status
func (h *MarketingHandler) TransitionCampaign(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "campaign")
	if !ok {
		return
	}
	var req marketingapp.CampaignStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	campaign, err := h.campaigns.TransitionCampaign(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, campaign)
}

// ScheduleCampaign schedules a draft campaign
func (h *MarketingHandler) ScheduleCampaign(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "campaign")
	if !ok {
		return
	}
	var req marketingapp.ScheduleCampaignRequest
	if !h.bindJSON(c, &req) {
		return
	}

	campaign, err := h.campaigns.ScheduleCampaign(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, campaign)
}

// LaunchCampaign activates a campaign
func (h *MarketingHandler) LaunchCampaign(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "campaign")
	if !ok {
		return
	}

	campaign, err := h.campaigns.LaunchCampaign(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, campaign)
}

// CreateABTest attaches weighted variants to a campaign
func (h *MarketingHandler) CreateABTest(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "campaign")
	if !ok {
		return
	}
	var req marketingapp.ABTestRequest
	if !h.bindJSON(c, &req) {
		return
	}

	campaign, err := h.campaigns.CreateABTest(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, campaign)
}

// DeleteCampaign removes a campaign
func (h *MarketingHandler) DeleteCampaign(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "campaign")
	if !ok {
		return
	}

	if err := h.campaigns.DeleteCampaign(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Stats returns lead and campaign performance figures
func (h *MarketingHandler) Stats(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	stats, err := h.campaigns.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/services"
	"github.com/confhub/proposal-service/internal/storage"
	"github.com/confhub/proposal-service/internal/utils"
)

type ProposalHandler struct {
	BaseHandler
	proposalService services.ProposalService
	files           *storage.FileStore
}

func NewProposalHandler(proposalService services.ProposalService, files *storage.FileStore, logger utils.Logger) *ProposalHandler {
	return &ProposalHandler{
		BaseHandler:     NewBaseHandler(logger),
		proposalService: proposalService,
		files:           files,
	}
}

// ListProposals lists proposals visible to the caller
// @Summary List proposals
// @Description Speakers see their own proposals; reviewers and admins see all
// @Tags proposals
// @Produce json
// @Param q query string false "Search query (title and description)"
// @Param status query string false "Filter by status (pending, approved, rejected)"
// @Param tags query string false "Comma-separated tag IDs"
// @Param user_id query int false "Filter by speaker (reviewers and admins)"
// @Param page query int false "Page number (default: 1)"
// @Param per_page query int false "Page size (default: 15, max: 100)"
// @Success 200 {object} SuccessResponse "Paginated proposal list"
// @Failure 401 {object} ErrorResponse "Unauthenticated"
// @Router /proposals [get]
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	params := h.parseListParams(c)

	h.LogRequest(c, "Listing proposals", "page", params.Page, "per_page", params.PerPage)

	response, err := h.proposalService.List(c.Request.Context(), params, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successEnvelope("Proposals retrieved", response))
}

// CreateProposal submits a new proposal
// @Summary Submit a proposal
// @Description Submit a talk proposal with optional tags and PDF attachment
// @Tags proposals
// @Accept mpfd
// @Accept json
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param tags formData []string false "Tag names"
// @Param file formData file false "PDF attachment (max 4MB)"
// @Success 201 {object} SuccessResponse "Created proposal"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Router /proposals [post]
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateProposalRequest
	if err := h.bindProposalRequest(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("Invalid request body", nil))
		return
	}

	filePath, ok := h.storeUpload(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Creating proposal", "title", req.Title, "user_id", actor.ID)

	proposal, err := h.proposalService.Create(c.Request.Context(), &req, filePath, actor)
	if err != nil {
		h.discardUpload(c, filePath)
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successEnvelope("Proposal submitted", proposal))
}

// GetProposal retrieves a single proposal
// @Summary Get a proposal
// @Tags proposals
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} SuccessResponse "Proposal with review aggregates"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /proposals/{id} [get]
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	proposal, err := h.proposalService.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successEnvelope("Proposal retrieved", proposal))
}

// UpdateProposal partially updates a proposal
// @Summary Update a proposal
// @Description Owners and admins may update; a new PDF replaces the old one
// @Tags proposals
// @Accept mpfd
// @Accept json
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} SuccessResponse "Updated proposal"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Router /proposals/{id} [put]
func (h *ProposalHandler) UpdateProposal(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateProposalRequest
	if err := h.bindProposalRequest(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("Invalid request body", nil))
		return
	}

	filePath, ok := h.storeUpload(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Updating proposal", "proposal_id", id)

	proposal, err := h.proposalService.Update(c.Request.Context(), id, &req, filePath, actor)
	if err != nil {
		h.discardUpload(c, filePath)
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successEnvelope("Proposal updated", proposal))
}

// DeleteProposal removes a proposal and its attachment
// @Summary Delete a proposal
// @Tags proposals
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /proposals/{id} [delete]
func (h *ProposalHandler) DeleteProposal(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting proposal", "proposal_id", id)

	if err := h.proposalService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successEnvelope("Proposal deleted", nil))
}

// TopRatedProposals lists approved proposals ranked by average rating
// @Summary Top-rated proposals
// @Description Approved proposals with an average rating of at least 4.0
// @Tags proposals
// @Produce json
// @Param limit query int false "Result limit (default: 10, max: 50)"
// @Success 200 {object} SuccessResponse "Ranked proposals"
// @Router /proposals/top-rated [get]
func (h *ProposalHandler) TopRatedProposals(c *gin.Context) {
	limit := h.parseIntQuery(c, "limit", services.TopRatedDefaultLimit)

	proposals, err := h.proposalService.TopRated(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successEnvelope("Top rated proposals retrieved", gin.H{"proposals": proposals}))
}

// DownloadProposalFile serves the stored PDF attachment
// @Summary Download proposal attachment
// @Tags proposals
// @Produce application/pdf
// @Param id path int true "Proposal ID"
// @Success 200 {file} file "PDF attachment"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /proposals/{id}/download [get]
func (h *ProposalHandler) DownloadProposalFile(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	path, err := h.proposalService.FilePath(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Serving proposal attachment", "proposal_id", id)

	c.Header("Content-Type", storage.AllowedMimeType)
	c.Header("Content-Disposition", `attachment; filename="proposal-`+strconv.FormatUint(uint64(id), 10)+`.pdf"`)
	c.File(path)
}

// ===== HELPER METHODS =====

// bindProposalRequest accepts both JSON and multipart form payloads, so
// clients without attachments can stay on JSON.
func (h *ProposalHandler) bindProposalRequest(c *gin.Context, req interface{}) error {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/form-data") || contentType == "application/x-www-form-urlencoded" {
		return c.ShouldBind(req)
	}
	return c.ShouldBindJSON(req)
}

// storeUpload validates and stores the optional "file" part before the
// service runs. Returns (nil, true) when no file was sent.
func (h *ProposalHandler) storeUpload(c *gin.Context) (*string, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, true
	}

	if err := storage.ValidUpload(file); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorEnvelope("Validation failed", map[string]string{
			"file": err.Error(),
		}))
		return nil, false
	}

	stored, err := h.files.SaveUpload(file)
	if err != nil {
		h.LogError(c, err, "Failed to store upload")
		c.JSON(http.StatusInternalServerError, errorEnvelope("Internal server error", nil))
		return nil, false
	}

	return &stored, true
}

// discardUpload removes a stored file when the service rejected the request.
func (h *ProposalHandler) discardUpload(c *gin.Context, filePath *string) {
	if filePath == nil {
		return
	}
	if err := h.files.Remove(*filePath); err != nil {
		h.LogError(c, err, "Failed to clean up rejected upload")
	}
}

func (h *ProposalHandler) parseListParams(c *gin.Context) services.ProposalListParams {
	params := services.ProposalListParams{
		Search:  c.Query("q"),
		Page:    h.parseIntQuery(c, "page", 1),
		PerPage: h.parseIntQuery(c, "per_page", services.DefaultPerPage),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.ProposalStatus(statusStr)
		params.Status = &status
	}

	if tagsStr := c.Query("tags"); tagsStr != "" {
		for _, part := range strings.Split(tagsStr, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
			if err == nil && id > 0 {
				params.TagIDs = append(params.TagIDs, uint(id))
			}
		}
	}

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		if id, err := strconv.ParseUint(userIDStr, 10, 32); err == nil && id > 0 {
			userID := uint(id)
			params.UserID = &userID
		}
	}

	return params
}

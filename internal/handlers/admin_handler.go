package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/confhub/proposal-service/internal/services"
	"github.com/confhub/proposal-service/internal/utils"
	"github.com/confhub/proposal-service/internal/validator"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	BaseHandler
	proposalService services.ProposalService
	exportService   services.ExportService
}

func NewAdminHandler(proposalService services.ProposalService, exportService services.ExportService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:     NewBaseHandler(logger),
		proposalService: proposalService,
		exportService:   exportService,
	}
}

// UpdateProposalStatus sets a proposal's status
// @Summary Update proposal status
// @Description Admin-only status transition between pending, approved and rejected
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Proposal ID"
// @Param request body validator.StatusUpdateRequest true "Target status"
// @Success 200 {object} SuccessResponse "Updated proposal"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 422 {object} ErrorResponse "Invalid status"
// @Router /admin/proposals/{id}/status [patch]
func (h *AdminHandler) UpdateProposalStatus(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req validator.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("Invalid request body", nil))
		return
	}

	h.LogRequest(c, "Updating proposal status", "proposal_id", id, "status", req.Status)

	proposal, err := h.proposalService.UpdateStatus(c.Request.Context(), id, req.Status, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successEnvelope("Proposal status updated", proposal))
}

// ExportProposals streams an Excel workbook of every proposal
// @Summary Export proposals
// @Description Admin-only Excel export with review aggregates per proposal
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "Workbook"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /admin/proposals/export [get]
func (h *AdminHandler) ExportProposals(c *gin.Context) {
	h.LogRequest(c, "Exporting proposals")

	workbook, err := h.exportService.ProposalsWorkbook(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("proposals-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", excelContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := workbook.Write(c.Writer); err != nil {
		h.LogError(c, err, "Failed to write export")
	}
}

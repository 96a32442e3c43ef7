package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/confhub/proposal-service/internal/services"
	"github.com/confhub/proposal-service/internal/utils"
)

type TagHandler struct {
	BaseHandler
	tagService services.TagService
}

func NewTagHandler(tagService services.TagService, logger utils.Logger) *TagHandler {
	return &TagHandler{
		BaseHandler: NewBaseHandler(logger),
		tagService:  tagService,
	}
}

// ListTags lists tags with optional name search
// @Summary List tags
// @Tags tags
// @Produce json
// @Param q query string false "Name filter"
// @Success 200 {object} SuccessResponse "Tags"
// @Router /tags [get]
func (h *TagHandler) ListTags(c *gin.Context) {
	var search *string
	if q := c.Query("q"); q != "" {
		search = &q
	}

	tags, err := h.tagService.List(c.Request.Context(), search)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successEnvelope("Tags retrieved", gin.H{"tags": tags}))
}

// CreateTag creates a tag, returning the existing one on a name match
// @Summary Create a tag
// @Tags tags
// @Accept json
// @Produce json
// @Param request body services.CreateTagRequest true "Tag payload"
// @Success 201 {object} SuccessResponse "Tag"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Router /tags [post]
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req services.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("Invalid request body", nil))
		return
	}

	h.LogRequest(c, "Creating tag", "name", req.Name)

	tag, err := h.tagService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successEnvelope("Tag created", tag))
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/confhub/proposal-service/internal/services"
	"github.com/confhub/proposal-service/internal/utils"
)

type ReviewHandler struct {
	BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService, logger utils.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   NewBaseHandler(logger),
		reviewService: reviewService,
	}
}

// ListReviews lists the reviews of a proposal
// @Summary List reviews
// @Tags reviews
// @Produce json
// @Param id path int true "Proposal ID"
// @Success 200 {object} SuccessResponse "Reviews"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /proposals/{id}/reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	proposalID := h.parseIDParam(c, "id")
	if proposalID == 0 {
		return
	}

	reviews, err := h.reviewService.ListByProposal(c.Request.Context(), proposalID, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successEnvelope("Reviews retrieved", gin.H{"reviews": reviews}))
}

// CreateReview submits a review for a proposal
// @Summary Submit a review
// @Description One review per reviewer per proposal; ratings are 1-5 or 10
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Proposal ID"
// @Param request body services.CreateReviewRequest true "Review payload"
// @Success 201 {object} SuccessResponse "Created review"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 422 {object} ErrorResponse "Validation failed or duplicate review"
// @Router /proposals/{id}/reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	proposalID := h.parseIDParam(c, "id")
	if proposalID == 0 {
		return
	}

	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("Invalid request body", nil))
		return
	}

	h.LogRequest(c, "Creating review", "proposal_id", proposalID, "rating", req.Rating)

	review, err := h.reviewService.Create(c.Request.Context(), proposalID, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successEnvelope("Review submitted", review))
}

// GetReview retrieves a single review
// @Summary Get a review
// @Tags reviews
// @Produce json
// @Param id path int true "Proposal ID"
// @Param review_id path int true "Review ID"
// @Success 200 {object} SuccessResponse "Review"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /proposals/{id}/reviews/{review_id} [get]
func (h *ReviewHandler) GetReview(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	proposalID := h.parseIDParam(c, "id")
	if proposalID == 0 {
		return
	}
	reviewID := h.parseIDParam(c, "review_id")
	if reviewID == 0 {
		return
	}

	review, err := h.reviewService.GetByID(c.Request.Context(), proposalID, reviewID, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successEnvelope("Review retrieved", review))
}

// UpdateReview updates the caller's review
// @Summary Update a review
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Proposal ID"
// @Param review_id path int true "Review ID"
// @Param request body services.UpdateReviewRequest true "Review payload"
// @Success 200 {object} SuccessResponse "Updated review"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Router /proposals/{id}/reviews/{review_id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	actor, ok := h.currentUser(c)
	if !ok {
		return
	}

	proposalID := h.parseIDParam(c, "id")
	if proposalID == 0 {
		return
	}
	reviewID := h.parseIDParam(c, "review_id")
	if reviewID == 0 {
		return
	}

	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("Invalid request body", nil))
		return
	}

	h.LogRequest(c, "Updating review", "proposal_id", proposalID, "review_id", reviewID)

	review, err := h.reviewService.Update(c.Request.Context(), proposalID, reviewID, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successEnvelope("Review updated", review))
}

// RatingOptions returns the discrete rating scale
// @Summary Rating options
// @Tags reviews
// @Produce json
// @Success 200 {object} SuccessResponse "Allowed rating values"
// @Router /reviews/rating-options [get]
func (h *ReviewHandler) RatingOptions(c *gin.Context) {
	c.JSON(http.StatusOK, successEnvelope("Rating options retrieved", gin.H{
		"ratings": h.reviewService.RatingOptions(),
	}))
}

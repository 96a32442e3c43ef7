package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/confhub/proposal-service/internal/auth"
	"github.com/confhub/proposal-service/internal/config"
	"github.com/confhub/proposal-service/internal/models"
	"github.com/confhub/proposal-service/internal/repositories"
	"github.com/confhub/proposal-service/internal/services"
	"github.com/confhub/proposal-service/internal/storage"
	"github.com/confhub/proposal-service/internal/utils"
)

type HandlerManager struct {
	authHandler     *AuthHandler
	proposalHandler *ProposalHandler
	reviewHandler   *ReviewHandler
	tagHandler      *TagHandler
	adminHandler    *AdminHandler
	authMiddleware  *SessionAuthMiddleware
	rateLimiter     *RateLimiter
	rateLimits      config.RateLimitConfig
	serviceManager  services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	sessions *auth.SessionStore,
	userRepo repositories.UserRepository,
	files *storage.FileStore,
	rateLimiter *RateLimiter,
	cfg *config.Config,
	logger utils.Logger,
) *HandlerManager {
	secureCookies := cfg.Environment == "production"

	return &HandlerManager{
		authHandler:     NewAuthHandler(serviceManager.Auth(), sessions, cfg.SessionCookieName, secureCookies, logger),
		proposalHandler: NewProposalHandler(serviceManager.Proposal(), files, logger),
		reviewHandler:   NewReviewHandler(serviceManager.Review(), logger),
		tagHandler:      NewTagHandler(serviceManager.Tag(), logger),
		adminHandler:    NewAdminHandler(serviceManager.Proposal(), serviceManager.Export(), logger),
		authMiddleware:  NewSessionAuthMiddleware(sessions, userRepo, cfg.SessionCookieName),
		rateLimiter:     rateLimiter,
		rateLimits:      cfg.RateLimit,
		serviceManager:  serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	// Public auth endpoints, throttled per client address
	authLimit := hm.rateLimiter.Limit("auth", hm.rateLimits.AuthPerMinute, time.Minute)
	api.POST("/register", authLimit, hm.authHandler.Register)
	api.POST("/login", authLimit, hm.authHandler.Login)

	// Everything else requires a session
	authed := api.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		authed.POST("/logout", hm.authHandler.Logout)
		authed.GET("/user", hm.authHandler.CurrentUser)

		// Tag routes
		tags := authed.Group("/tags")
		{
			tags.GET("", hm.tagHandler.ListTags)
			tags.POST("", hm.tagHandler.CreateTag)
		}

		// Proposal routes; submissions and uploads carry per-user quotas
		submitLimit := hm.rateLimiter.LimitBy("proposals", hm.rateLimits.ProposalsPerHour, time.Hour, PerUser)
		uploadLimit := hm.rateLimiter.LimitBy("uploads", hm.rateLimits.UploadsPerHour, time.Hour, PerUser)

		proposals := authed.Group("/proposals")
		{
			proposals.GET("", hm.proposalHandler.ListProposals)
			proposals.POST("", submitLimit, uploadLimit, hm.proposalHandler.CreateProposal)
			proposals.GET("/top-rated", hm.proposalHandler.TopRatedProposals)
			proposals.GET("/:id", hm.proposalHandler.GetProposal)
			proposals.PUT("/:id", uploadLimit, hm.proposalHandler.UpdateProposal)
			proposals.PATCH("/:id", uploadLimit, hm.proposalHandler.UpdateProposal)
			proposals.DELETE("/:id", hm.proposalHandler.DeleteProposal)
			proposals.GET("/:id/download", hm.proposalHandler.DownloadProposalFile)

			// Review routes - reviewers submit, speakers read their own,
			// only admins revise submitted reviews
			proposals.GET("/:id/reviews", hm.reviewHandler.ListReviews)
			proposals.POST("/:id/reviews", hm.authMiddleware.RequireRoleMiddleware(models.RoleReviewer), hm.reviewHandler.CreateReview)
			proposals.GET("/:id/reviews/:review_id", hm.reviewHandler.GetReview)
			proposals.PUT("/:id/reviews/:review_id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.reviewHandler.UpdateReview)
		}

		authed.GET("/reviews/rating-options", hm.reviewHandler.RatingOptions)

		// Reviewer view over every proposal
		review := authed.Group("/review")
		review.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleReviewer))
		{
			review.GET("/proposals", hm.proposalHandler.ListProposals)
		}

		// Admin routes
		admin := authed.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			admin.GET("/proposals", hm.proposalHandler.ListProposals)
			admin.PATCH("/proposals/:id/status", hm.adminHandler.UpdateProposalStatus)
			admin.GET("/proposals/export", hm.adminHandler.ExportProposals)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "proposal-service",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "proposal-service",
		})
	})
}

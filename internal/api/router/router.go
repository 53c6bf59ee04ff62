package router

import (
	"github.com/cuongbtq/recruitment-be/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) (*gin.Engine, error) {
	if err := handler.RegisterValidators(deps.StrictTiers); err != nil {
		return nil, err
	}

	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(deps.AllowedOrigins))

	healthHandler := handler.NewHealthHandler(deps)
	applicationHandler := handler.NewApplicationHandler(deps)
	boostHandler := handler.NewBoostHandler(deps)
	webhookHandler := handler.NewWebhookHandler(deps)
	adminHandler := handler.NewAdminHandler(deps)

	// GET /health - database reachability
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// POST /api/v1/applications - Submit an application (multipart)
		v1.POST("/applications", applicationHandler.SubmitApplication)

		// POST /api/v1/boost/checkout - Start a boost payment
		v1.POST("/boost/checkout", boostHandler.CreateCheckout)

		// POST /api/v1/webhooks/paystack - Payment notifications
		v1.POST("/webhooks/paystack", webhookHandler.Paystack)

		admin := v1.Group("/admin", AdminAuth(deps.AdminToken, deps.Logger))
		{
			// GET /api/v1/admin/applications - List applications, boosted first
			admin.GET("/applications", adminHandler.ListApplications)

			// GET /api/v1/admin/applications/:id - Get application details
			admin.GET("/applications/:id", adminHandler.GetApplication)

			// PATCH /api/v1/admin/applications/:id - Update review status
			admin.PATCH("/applications/:id", adminHandler.UpdateApplicationStatus)

			// DELETE /api/v1/admin/applications/:id - Delete an application
			admin.DELETE("/applications/:id", adminHandler.DeleteApplication)

			// GET /api/v1/admin/applications/:id/cv - Download the CV
			admin.GET("/applications/:id/cv", adminHandler.DownloadCV)
		}
	}

	return r, nil
}

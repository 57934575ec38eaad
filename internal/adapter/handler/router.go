package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-minutes/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	auth           echo.MiddlewareFunc
	meetingHandler *Meeting
	assetHandler   *Asset
}

// NewRouter creates a new router with all handlers. auth guards every
// meeting route.
func NewRouter(cfg *config.Config, auth echo.MiddlewareFunc, meetingHandler *Meeting, assetHandler *Asset) *Router {
	return &Router{
		cfg:            cfg,
		auth:           auth,
		meetingHandler: meetingHandler,
		assetHandler:   assetHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1", rt.auth)

	rt.setupMeetingRoutes(v1)
	v1.GET("/fonts", rt.meetingHandler.Fonts)
	v1.GET("/assets/images/*", rt.assetHandler.GetImage)
}

// setupMeetingRoutes configures meeting and action item routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")

	meetings.GET("", rt.meetingHandler.ListMeetings)
	meetings.POST("", rt.meetingHandler.CreateMeeting)
	meetings.GET("/summary", rt.meetingHandler.Summary)
	meetings.GET("/:id", rt.meetingHandler.GetMeeting)
	meetings.PUT("/:id", rt.meetingHandler.UpdateMeeting)
	meetings.DELETE("/:id", rt.meetingHandler.DeleteMeeting)
	meetings.GET("/:id/pdf", rt.meetingHandler.DownloadReport)

	meetings.POST("/:id/actions/:index/toggle", rt.meetingHandler.ToggleActionItem)
	meetings.POST("/:id/actions/bulk", rt.meetingHandler.BulkUpdateActionItems)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}

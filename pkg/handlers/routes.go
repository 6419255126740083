package handlers

import (
	"github.com/gin-gonic/gin"
)

// Register mounts every route on r
func (h *Handler) Register(r *gin.Engine) {
	// Admin interface - serve static files from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	r.GET("/", h.Root)
	r.GET("/healthz", h.Health)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Assignment Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/assign", h.Assign)
		api.POST("/assign/move", h.MoveRoom)
		api.POST("/validate", h.ValidateInput)
		api.POST("/estimate", h.Estimate)
		api.POST("/export/csv", h.ExportCSV)
		api.POST("/export/xlsx", h.ExportXLSX)
		api.GET("/usage", h.GetMyUsage)
	}

	hotels := api.Group("/hotels/:hotel")
	hotels.Use(h.HotelScope())
	{
		hotels.POST("/assign", h.AssignHotel)
		hotels.PUT("/rooms", h.PutRooms)
		hotels.PUT("/staff", h.PutStaff)
		hotels.PUT("/layouts", h.PutLayouts)
		hotels.GET("/layouts", h.GetLayouts)
		hotels.POST("/assignments", h.SaveAssignments)
		hotels.GET("/assignments", h.ListAssignments)
	}
}

// NewRouter builds an engine with recovery, access logging and all routes
func (h *Handler) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.AccessLog())
	h.Register(r)
	return r
}

package ui

import (
	"net/http"

	"exodash/app"
	"exodash/domain/physics"
	"exodash/internal/analytics"
	"exodash/internal/api"
	"exodash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Dependencies are the collaborators the HTTP surface drives.
type Dependencies struct {
	Form      *app.CandidateForm
	Batches   *app.BatchRegistry
	Hub       *api.SSEHub
	Analytics *analytics.Service
	Physics   *physics.Classifier

	CurvePoints    int
	MaxUploadBytes int64
}

// Server represents the web server for the classification dashboard
type Server struct {
	router *gin.Engine
	deps   Dependencies
}

// NewServer creates a new web server instance with its routes registered
func NewServer(deps Dependencies) *Server {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 32 << 20
	}
	s := &Server{
		router: gin.New(),
		deps:   deps,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())
	if gin.Mode() == gin.DebugMode {
		s.router.Use(gin.Logger())
	}
	s.router.MaxMultipartMemory = s.deps.MaxUploadBytes
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := s.router.Group("/api")

	missions := apiGroup.Group("/missions")
	missions.GET("", s.handleMissions)
	missions.GET("/:id/schema", s.handleMissionSchema)
	missions.GET("/:id/sample", s.handleMissionSample)
	missions.GET("/:id/template.csv", s.handleMissionTemplate)

	form := apiGroup.Group("/candidate")
	form.GET("", s.handleCandidate)
	form.POST("/mission", s.handleCandidateMission)
	form.POST("/field", s.handleCandidateField)
	form.POST("/sample", s.handleCandidateSample)
	form.POST("/submit", s.handleCandidateSubmit)
	form.POST("/reset", s.handleCandidateReset)

	batches := apiGroup.Group("/batch")
	batches.POST("", s.handleBatchUpload)
	batches.GET("/:id", s.handleBatchStatus)
	batches.POST("/:id/submit", s.handleBatchSubmit)
	batches.GET("/:id/summary", s.handleBatchSummary)
	batches.GET("/:id/export.csv", s.handleBatchExportCSV)
	batches.GET("/:id/export.xlsx", s.handleBatchExportXLSX)
	batches.GET("/:id/events", s.handleBatchEvents)
	batches.DELETE("/:id", s.handleBatchDelete)

	apiGroup.GET("/lightcurve", s.handleLightCurve)
	apiGroup.GET("/physics", s.handlePhysics)
	apiGroup.GET("/analytics", s.handleAnalytics)
}

// Handler exposes the router for an http.Server or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Package api exposes the HTTP control surface for triggering runs and
// rendering single articles.
package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"newsreel/types"
)

// Runner triggers one batch run end to end.
type Runner interface {
	Run(ctx context.Context) (types.RunReport, error)
}

// Planner converts one article into a narration plan.
type Planner interface {
	Plan(ctx context.Context, article types.Article) []types.NarrationSegment
}

// Renderer turns a planned article into a finished artifact.
type Renderer interface {
	Render(ctx context.Context, article types.Article, segments []types.NarrationSegment, index int) (types.VideoArtifact, error)
}

// Server holds the collaborators the HTTP handlers need.
type Server struct {
	runner   Runner
	planner  Planner
	renderer Renderer
}

func NewServer(runner Runner, planner Planner, renderer Renderer) *Server {
	return &Server{runner: runner, planner: planner, renderer: renderer}
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.POST("/api/run", s.handleRun)
	r.POST("/api/videos", s.handleCreateVideo)
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// handleRun kicks off a batch run asynchronously and returns 202
// immediately; progress lands in the logs and the push notification.
func (s *Server) handleRun(c *gin.Context) {
	go func() {
		if _, err := s.runner.Run(context.Background()); err != nil {
			log.Printf("[api] run failed: %v", err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "run started"})
}

// handleCreateVideo renders a video for one posted article, synchronously.
func (s *Server) handleCreateVideo(c *gin.Context) {
	var article types.Article
	if err := c.ShouldBindJSON(&article); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if article.URL == "" || article.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and url are required"})
		return
	}

	segments := s.planner.Plan(c.Request.Context(), article)
	artifact, err := s.renderer.Render(c.Request.Context(), article, segments, 0)
	if err != nil {
		log.Printf("[api] video failed for %s: %v", article.URL, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "created",
		"video": gin.H{
			"article_url": artifact.ArticleURL,
			"category":    artifact.Category,
			"path":        artifact.Path,
			"duration":    artifact.Duration,
		},
	})
}

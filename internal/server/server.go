// Package server exposes the question answering service over HTTP: a small
// HTML front end, a JSON API, and an admin surface.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/razmarrus/cv-rag/internal/config"
	"github.com/razmarrus/cv-rag/internal/service"
	"github.com/razmarrus/cv-rag/pkg/circuitbreaker"
	"github.com/razmarrus/cv-rag/pkg/logger"
	"github.com/razmarrus/cv-rag/pkg/ratelimiter"
)

// HealthFunc reports whether a dependency is reachable.
type HealthFunc func(ctx context.Context) error

// Options carries the optional server collaborators.
type Options struct {
	RateLimiter ratelimiter.RateLimiter
	Breaker     circuitbreaker.CircuitBreaker
	DBHealth    HealthFunc
	// WebDir holds templates/ and static/. Empty disables the HTML front
	// end, which keeps tests free of filesystem dependencies.
	WebDir string
}

// Server wires the service into a gin engine.
type Server struct {
	engine *gin.Engine
	svc    *service.RAGService
	cfg    *config.AppConfig
	opts   Options
	log    *logger.Logger
}

// New builds the engine with all routes and middleware registered.
func New(svc *service.RAGService, cfg *config.AppConfig, opts Options, log *logger.Logger) *Server {
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	} else if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log))

	s := &Server{engine: engine, svc: svc, cfg: cfg, opts: opts, log: log}
	s.registerRoutes()
	return s
}

// Engine exposes the underlying gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	if s.opts.WebDir != "" {
		s.engine.LoadHTMLGlob(s.opts.WebDir + "/templates/*")
		s.engine.Static("/static", s.opts.WebDir+"/static")
		s.engine.GET("/", s.handleIndex)
		s.engine.POST("/ask", append(s.askMiddleware(), s.handleAskForm)...)
	}

	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api/v1")
	api.POST("/ask", append(s.askMiddleware(), s.handleAskJSON)...)
	api.GET("/search", s.handleSearch)
	api.GET("/sources", s.handleSources)
	api.GET("/history", s.handleHistory)
	api.GET("/stats", s.handleStats)

	admin := s.engine.Group("/api/v1/admin", AdminAuth(s.cfg.Server.AdminToken))
	admin.POST("/ingest", s.handleIngest)
	admin.DELETE("/sources/:source", s.handleDeleteSource)
}

// askMiddleware returns the middleware chain guarding the expensive ask
// endpoints.
func (s *Server) askMiddleware() []gin.HandlerFunc {
	var chain []gin.HandlerFunc
	if s.opts.RateLimiter != nil {
		chain = append(chain, RateLimit(s.opts.RateLimiter))
	}
	if s.opts.Breaker != nil {
		chain = append(chain, Breaker(s.opts.Breaker))
	}
	return chain
}

func (s *Server) handleIndex(c *gin.Context) {
	stats, err := s.svc.Stats(c.Request.Context())
	if err != nil {
		s.log.Warn("Failed to load stats for index page: " + err.Error())
		stats = &service.Stats{}
	}
	c.HTML(http.StatusOK, "index.html", gin.H{"Stats": stats})
}

// handleAskForm serves the browser form. Errors render back into the page
// instead of a JSON body.
func (s *Server) handleAskForm(c *gin.Context) {
	question := c.PostForm("question")

	result, err := s.svc.Answer(c.Request.Context(), question)
	if err != nil {
		status := http.StatusInternalServerError
		message := "Something went wrong while answering, please try again."
		if errors.Is(err, service.ErrQuestionTooShort) {
			status = http.StatusBadRequest
			message = "Please enter a question of at least 3 characters."
		}
		c.HTML(status, "index.html", gin.H{"Question": question, "Error": message})
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Question": result.Question,
		"Result":   result,
	})
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

func (s *Server) handleAskJSON(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	result, err := s.svc.Answer(c.Request.Context(), req.Question)
	if err != nil {
		if errors.Is(err, service.ErrQuestionTooShort) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("Failed to answer question: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer question"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearch(c *gin.Context) {
	question := c.Query("q")
	topK, _ := strconv.Atoi(c.DefaultQuery("top_k", "0"))

	chunks, err := s.svc.Search(c.Request.Context(), question, topK)
	if err != nil {
		if errors.Is(err, service.ErrQuestionTooShort) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("Search failed: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chunks": chunks, "count": len(chunks)})
}

func (s *Server) handleSources(c *gin.Context) {
	sources, err := s.svc.Sources(c.Request.Context())
	if err != nil {
		s.log.Error("Failed to list sources: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sources"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources, "count": len(sources)})
}

func (s *Server) handleHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	records, err := s.svc.History(c.Request.Context(), limit)
	if err != nil {
		s.log.Error("Failed to load history: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": records, "count": len(records)})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.svc.Stats(c.Request.Context())
	if err != nil {
		s.log.Error("Failed to load stats: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type ingestRequest struct {
	Path string `json:"path" binding:"required"`
}

func (s *Server) handleIngest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	report, err := s.svc.Ingest(c.Request.Context(), req.Path)
	if err != nil {
		s.log.Error("Ingestion failed: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleDeleteSource(c *gin.Context) {
	source := c.Param("source")

	deleted, err := s.svc.DeleteSource(c.Request.Context(), source)
	if err != nil {
		s.log.Error("Failed to delete source: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete source"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": source, "deleted": deleted})
}

// handleHealth reports service liveness and database reachability in the
// same shape whether or not the database is up, so probes can always parse
// it.
func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	database := "connected"

	if s.opts.DBHealth != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.opts.DBHealth(ctx); err != nil {
			status = "degraded"
			database = "disconnected"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "database": database})
}

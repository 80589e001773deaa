// Package webui serves the browser form for the bulk create flow.
package webui

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskpile/internal/config"
	"taskpile/internal/service"
	"taskpile/internal/webui/handlers"
)

//go:embed static/index.html
var indexHTML []byte

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	EnableCORS   bool
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "localhost",
		Port:         8080,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // batches run inside the request
	}
}

// Server hosts the form page and its JSON API.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	log        *logrus.Logger
}

// NewServer wires the handlers onto a gin engine.
func NewServer(svc service.Service, cfg *config.Config, srvCfg ServerConfig, log *logrus.Logger) *Server {
	if !srvCfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())

	if srvCfg.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
		engine.Use(cors.New(corsConfig))
	}

	s := &Server{
		engine: engine,
		log:    log,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", srvCfg.Host, srvCfg.Port),
			Handler:      engine,
			ReadTimeout:  srvCfg.ReadTimeout,
			WriteTimeout: srvCfg.WriteTimeout,
		},
	}
	s.setupRoutes(svc, cfg)
	return s
}

func (s *Server) setupRoutes(svc service.Service, cfg *config.Config) {
	fieldsHandler := handlers.NewFieldsHandler(svc, cfg)
	tasksHandler := handlers.NewTasksHandler(svc, cfg, s.log)
	workbookHandler := handlers.NewWorkbookHandler()

	s.engine.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")
	{
		api.GET("/fields", fieldsHandler.List)
		api.POST("/tasks/bulk", tasksHandler.BulkCreate)
		api.POST("/workbook/sheets", workbookHandler.Sheets)
		api.POST("/workbook/parse", workbookHandler.Parse)
	}
}

// Handler exposes the engine (for tests).
func (s *Server) Handler() http.Handler { return s.engine }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("web ui listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}

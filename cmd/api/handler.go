package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"kanladin-backend/internal/kanban/delivery"
	"kanladin-backend/internal/kanban/usecase"
	"kanladin-backend/pkg/config"
	"kanladin-backend/pkg/logger"
)

type Handler struct {
	kanbanHandler  *delivery.KanbanHandler
	graphqlHandler *delivery.GraphQLHandler
	config         *config.Config
	router         *gin.Engine
	server         *http.Server
}

func NewHandler(boardUc usecase.BoardUsecase, columnUc usecase.ColumnUsecase, cardUc usecase.CardUsecase, cfg *config.Config) (*Handler, error) {
	schema, err := delivery.NewSchema(delivery.NewResolver(boardUc, columnUc, cardUc))
	if err != nil {
		return nil, err
	}

	h := &Handler{
		kanbanHandler:  delivery.NewKanbanHandler(boardUc, columnUc, cardUc),
		graphqlHandler: delivery.NewGraphQLHandler(schema),
		config:         cfg,
	}
	h.router = h.setupRouter()
	h.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return h, nil
}

// Router returns the gin engine with middleware and every route
func (h *Handler) Router() *gin.Engine {
	return h.router
}

func (h *Handler) setupRouter() *gin.Engine {
	gin.SetMode(h.config.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(), corsMiddleware(h.config.CORSOrigins))

	SetupRoutes(r, h.kanbanHandler, h.graphqlHandler)
	return r
}

// Start serves HTTP on the configured port until Shutdown is called.
// It returns nil at once when Shutdown already ran.
func (h *Handler) Start() error {
	log.WithField("component", "http").Infof("server listening on %s", h.server.Addr)
	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (h *Handler) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// corsMiddleware allows the configured origins; "*" echoes any origin back
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case origin == "":
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed["*"] || allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

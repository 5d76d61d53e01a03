package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inboxpilot/inboxpilot/constants"
	"github.com/inboxpilot/inboxpilot/internal/common"
	"github.com/inboxpilot/inboxpilot/internal/entity"
	"github.com/inboxpilot/inboxpilot/internal/export"
	"github.com/inboxpilot/inboxpilot/internal/extract"
	"github.com/inboxpilot/inboxpilot/internal/gmail"
	"github.com/inboxpilot/inboxpilot/internal/llm"
	"github.com/inboxpilot/inboxpilot/internal/repository"
	syncsvc "github.com/inboxpilot/inboxpilot/internal/sync"
)

// Server wires repositories, the Gmail adapter, and the extraction
// strategies behind an HTTP surface.
type Server struct {
	cfg       *common.Config
	pool      *pgxpool.Pool
	users     repository.UserRepository
	invoices  repository.InvoiceRepository
	exporter  *export.Service
	cipher    *common.TokenCipher
	llmClient llm.CompletionClient // nil when no API key is configured
	logger    *slog.Logger
}

func New(
	cfg *common.Config,
	pool *pgxpool.Pool,
	users repository.UserRepository,
	invoices repository.InvoiceRepository,
	cipher *common.TokenCipher,
	llmClient llm.CompletionClient,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:       cfg,
		pool:      pool,
		users:     users,
		invoices:  invoices,
		exporter:  export.NewService(invoices, logger),
		cipher:    cipher,
		llmClient: llmClient,
		logger:    logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)

	authed := r.Group("/", authMiddleware(s.cfg.Auth.SecretKey))
	authed.GET("/labels", s.handleListLabels)
	authed.POST("/sync", s.handleSync)
	authed.GET("/invoices", s.handleListInvoices)
	authed.DELETE("/invoices/:id", s.handleDeleteInvoice)
	authed.GET("/export/csv", s.handleExportCSV)
	authed.GET("/export/xlsx", s.handleExportXLSX)
	authed.PUT("/settings/extraction-mode", s.handleSetExtractionMode)

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.pool.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// currentUser loads the authenticated account, decrypting nothing yet.
func (s *Server) currentUser(c *gin.Context) (*entity.User, bool) {
	userID, ok := common.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no authenticated user"})
		return nil, false
	}
	user, err := s.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return nil, false
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return nil, false
	}
	return user, true
}

// syncServiceFor builds the per-request pipeline: Gmail client from the
// user's decrypted tokens, pattern strategy always, model strategy when a
// completion client is configured.
func (s *Server) syncServiceFor(ctx context.Context, user *entity.User) (*syncsvc.Service, error) {
	accessToken, err := s.cipher.Decrypt(user.GoogleAccessToken)
	if err != nil {
		return nil, common.WrapError(err, "decrypt access token")
	}
	refreshToken, err := s.cipher.Decrypt(user.GoogleRefreshToken)
	if err != nil {
		return nil, common.WrapError(err, "decrypt refresh token")
	}

	mb, err := gmail.NewClient(ctx, gmail.ClientConfig{
		ClientID:     s.cfg.Google.ClientID,
		ClientSecret: s.cfg.Google.ClientSecret,
		TokenURL:     s.cfg.Google.TokenURL,
	}, gmail.Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, s.logger)
	if err != nil {
		return nil, err
	}

	text := extract.NewTextExtractor(s.logger)
	pattern := extract.NewPatternStrategy(text, s.logger)
	var model extract.Strategy
	if s.llmClient != nil {
		model = extract.NewModelStrategy(text, s.llmClient, s.logger)
	}

	return syncsvc.NewService(user, mb, s.invoices, pattern, model, s.logger), nil
}

func (s *Server) handleListLabels(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	svc, err := s.syncServiceFor(c.Request.Context(), user)
	if err != nil {
		s.logger.Error("server.labels.build_failed", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to connect mailbox"})
		return
	}
	labels, err := svc.GetLabels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to list labels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

type syncRequest struct {
	LabelID string `json:"label_id" binding:"required"`
}

func (s *Server) handleSync(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "label_id is required"})
		return
	}
	svc, err := s.syncServiceFor(c.Request.Context(), user)
	if err != nil {
		s.logger.Error("server.sync.build_failed", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to connect mailbox"})
		return
	}
	result := svc.Sync(c.Request.Context(), req.LabelID)
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListInvoices(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)
	pageResult, err := s.invoices.List(c.Request.Context(), user.ID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list invoices"})
		return
	}
	c.JSON(http.StatusOK, pageResult)
}

func (s *Server) handleDeleteInvoice(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}
	deleted, err := s.invoices.Delete(c.Request.Context(), id, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete invoice"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleExportCSV(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	data, err := s.exporter.ExportCSV(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="invoices.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (s *Server) handleExportXLSX(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	data, err := s.exporter.ExportXLSX(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

type extractionModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

func (s *Server) handleSetExtractionMode(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var req extractionModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode is required"})
		return
	}
	mode := string(constants.NormalizeMode(req.Mode))
	if err := s.users.SetExtractionMode(c.Request.Context(), user.ID, mode); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update extraction mode"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"extraction_mode": mode})
}

func queryInt(c *gin.Context, key string, def int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return def
}

package api

import (
	"net/http"

	"GolfSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SessionHandler login, status and settings
type SessionHandler struct {
	engine *service.Engine
	logger *logrus.Logger
}

func NewSessionHandler(engine *service.Engine, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{engine: engine, logger: logger}
}

type loginRequest struct {
	Password string `json:"password"`
}

type settingsRequest struct {
	GithubToken  string `json:"github_token"`
	SitePassword string `json:"site_password"`
}

// StatusResponse engine state for the client
type StatusResponse struct {
	State        string           `json:"state"`
	Source       string           `json:"source"`
	HasToken     bool             `json:"has_token"`
	GistURL      string           `json:"gist_url,omitempty"`
	Participants int              `json:"participants"`
	Competitions int              `json:"competitions"`
	Notices      []service.Notice `json:"notices"`
}

// Login checks the site passphrase
// POST /api/login {"password": "..."}
func (h *SessionHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !h.engine.CheckPassword(req.Password) {
		h.logger.Warn("login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid site password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// Status state, data source and pending notices (drained by this call)
// GET /api/status
func (h *SessionHandler) Status(c *gin.Context) {
	notices := h.engine.Notices()
	if notices == nil {
		notices = []service.Notice{}
	}
	c.JSON(http.StatusOK, StatusResponse{
		State:        h.engine.State().String(),
		Source:       string(h.engine.Source()),
		HasToken:     h.engine.HasToken(),
		GistURL:      h.engine.GistURL(),
		Participants: len(h.engine.Participants()),
		Competitions: len(h.engine.Competitions()),
		Notices:      notices,
	})
}

// UpdateSettings saves token and/or passphrase; a new token reloads the data
// POST /api/settings {"github_token": "...", "site_password": "..."}
func (h *SessionHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	reloaded, err := h.engine.UpdateSettings(c.Request.Context(), req.GithubToken, req.SitePassword)
	if err != nil {
		respondError(c, h.logger, "UpdateSettings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reloaded":  reloaded,
		"has_token": h.engine.HasToken(),
		"source":    string(h.engine.Source()),
	})
}

// Reload runs the load state machine again
// POST /api/reload
func (h *SessionHandler) Reload(c *gin.Context) {
	result, err := h.engine.Load(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Reload", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ValidateToken probes the remote store with the current token
// POST /api/token/validate
func (h *SessionHandler) ValidateToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"valid": h.engine.ValidateToken(c.Request.Context())})
}

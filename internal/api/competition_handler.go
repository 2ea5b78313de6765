package api

import (
	"net/http"

	"GolfSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CompetitionHandler competition CRUD
type CompetitionHandler struct {
	engine *service.Engine
	logger *logrus.Logger
}

func NewCompetitionHandler(engine *service.Engine, logger *logrus.Logger) *CompetitionHandler {
	return &CompetitionHandler{engine: engine, logger: logger}
}

type competitionRequest struct {
	Title string `json:"title"`
	Date  string `json:"date"` // YYYY-MM-DD
}

func (h *CompetitionHandler) List(c *gin.Context) {
	items := h.engine.Competitions()
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// Create POST /api/competitions {"title": "...", "date": "2025-04-01"}
func (h *CompetitionHandler) Create(c *gin.Context) {
	var req competitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	comp, err := h.engine.AddCompetition(c.Request.Context(), req.Title, req.Date)
	if err != nil {
		respondError(c, h.logger, "AddCompetition", err)
		return
	}
	c.JSON(http.StatusCreated, comp)
}

func (h *CompetitionHandler) Get(c *gin.Context) {
	comp, err := h.engine.Competition(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "GetCompetition", err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

func (h *CompetitionHandler) Update(c *gin.Context) {
	var req competitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	comp, err := h.engine.UpdateCompetition(c.Request.Context(), c.Param("id"), req.Title, req.Date)
	if err != nil {
		respondError(c, h.logger, "UpdateCompetition", err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

func (h *CompetitionHandler) Delete(c *gin.Context) {
	if err := h.engine.DeleteCompetition(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "DeleteCompetition", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "competition deleted"})
}

// Attendance GET /api/competitions/:id/attendance, one row per participant
func (h *CompetitionHandler) Attendance(c *gin.Context) {
	rows, err := h.engine.AttendanceByCompetition(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "AttendanceByCompetition", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}

package api

import (
	"net/http"

	"GolfSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ParticipantHandler participant CRUD
type ParticipantHandler struct {
	engine *service.Engine
	logger *logrus.Logger
}

func NewParticipantHandler(engine *service.Engine, logger *logrus.Logger) *ParticipantHandler {
	return &ParticipantHandler{engine: engine, logger: logger}
}

type participantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// List GET /api/participants
func (h *ParticipantHandler) List(c *gin.Context) {
	items := h.engine.Participants()
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// Create POST /api/participants {"name": "...", "email": "..."}
func (h *ParticipantHandler) Create(c *gin.Context) {
	var req participantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.engine.AddParticipant(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		respondError(c, h.logger, "AddParticipant", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Get GET /api/participants/:id
func (h *ParticipantHandler) Get(c *gin.Context) {
	p, err := h.engine.Participant(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "GetParticipant", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Update PUT /api/participants/:id
func (h *ParticipantHandler) Update(c *gin.Context) {
	var req participantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.engine.UpdateParticipant(c.Request.Context(), c.Param("id"), req.Name, req.Email)
	if err != nil {
		respondError(c, h.logger, "UpdateParticipant", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete DELETE /api/participants/:id, attendance rows go with it
func (h *ParticipantHandler) Delete(c *gin.Context) {
	if err := h.engine.DeleteParticipant(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "DeleteParticipant", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "participant deleted"})
}

// Attendance GET /api/participants/:id/attendance, one row per competition
func (h *ParticipantHandler) Attendance(c *gin.Context) {
	rows, err := h.engine.AttendanceByParticipant(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "AttendanceByParticipant", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}

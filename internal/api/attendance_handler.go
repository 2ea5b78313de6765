package api

import (
	"net/http"

	"GolfSync/internal/errs"
	"GolfSync/internal/model"
	"GolfSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AttendanceHandler attendance status and fees
type AttendanceHandler struct {
	engine *service.Engine
	logger *logrus.Logger
}

func NewAttendanceHandler(engine *service.Engine, logger *logrus.Logger) *AttendanceHandler {
	return &AttendanceHandler{engine: engine, logger: logger}
}

type attendanceRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	CompetitionID string `json:"competition_id" binding:"required"`
	Status        string `json:"status"`
	Fee           *int   `json:"fee"` // only used with status present; omitted keeps the stored fee
}

// Set PUT /api/attendance
// {"participant_id": "...", "competition_id": "...", "status": "present", "fee": 3000}
func (h *AttendanceHandler) Set(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		respondError(c, h.logger, "SetAttendance", err)
		return
	}
	row, err := h.engine.SetAttendance(c.Request.Context(), req.ParticipantID, req.CompetitionID, status, req.Fee)
	if err != nil {
		respondError(c, h.logger, "SetAttendance", err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// SetFee PUT /api/attendance/fee, row must already be present
func (h *AttendanceHandler) SetFee(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Fee == nil {
		respondError(c, h.logger, "SetAttendanceFee", errs.Invalid("fee", "is required"))
		return
	}
	row, err := h.engine.SetAttendanceFee(c.Request.Context(), req.ParticipantID, req.CompetitionID, *req.Fee)
	if err != nil {
		respondError(c, h.logger, "SetAttendanceFee", err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// Remove DELETE /api/attendance/:participant_id/:competition_id, the pair reads as pending afterwards
func (h *AttendanceHandler) Remove(c *gin.Context) {
	pid, cid := c.Param("participant_id"), c.Param("competition_id")
	if err := h.engine.RemoveAttendance(c.Request.Context(), pid, cid); err != nil {
		respondError(c, h.logger, "RemoveAttendance", err)
		return
	}
	c.JSON(http.StatusOK, h.engine.Attendance(pid, cid))
}

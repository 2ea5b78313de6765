package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"GolfSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ReportHandler summaries and export
type ReportHandler struct {
	engine *service.Engine
	logger *logrus.Logger
}

func NewReportHandler(engine *service.Engine, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{engine: engine, logger: logger}
}

// Participant GET /api/reports/participants/:id
func (h *ReportHandler) Participant(c *gin.Context) {
	report, err := h.engine.ParticipantReport(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "ParticipantReport", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Competition GET /api/reports/competitions/:id
func (h *ReportHandler) Competition(c *gin.Context) {
	report, err := h.engine.CompetitionReport(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "CompetitionReport", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Export GET /api/export, downloaded as golf-competition-data-<date>.json
func (h *ReportHandler) Export(c *gin.Context) {
	doc := h.engine.Export()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		respondError(c, h.logger, "Export", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.FileName()))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

package api

import (
	"net/http"

	"GolfSync/internal/config"
	"GolfSync/internal/service"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PasswordHeader carries the shared site passphrase on every request but /api/login
const PasswordHeader = "X-Site-Password"

// NewRouter registers every route of the JSON API
func NewRouter(engine *service.Engine, cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	r := gin.Default()

	// pprof for debugging and profiling
	if cfg.Server.Pprof {
		pprof.Register(r)
		logger.Info("pprof routes registered under /debug/pprof")
	}

	session := NewSessionHandler(engine, logger)
	participants := NewParticipantHandler(engine, logger)
	competitions := NewCompetitionHandler(engine, logger)
	attendance := NewAttendanceHandler(engine, logger)
	reports := NewReportHandler(engine, logger)

	r.POST("/api/login", session.Login)

	api := r.Group("/api", RequirePassword(engine))
	{
		api.GET("/status", session.Status)
		api.POST("/settings", session.UpdateSettings)
		api.POST("/reload", session.Reload)
		api.POST("/token/validate", session.ValidateToken)

		api.GET("/participants", participants.List)
		api.POST("/participants", participants.Create)
		api.GET("/participants/:id", participants.Get)
		api.PUT("/participants/:id", participants.Update)
		api.DELETE("/participants/:id", participants.Delete)
		api.GET("/participants/:id/attendance", participants.Attendance)

		api.GET("/competitions", competitions.List)
		api.POST("/competitions", competitions.Create)
		api.GET("/competitions/:id", competitions.Get)
		api.PUT("/competitions/:id", competitions.Update)
		api.DELETE("/competitions/:id", competitions.Delete)
		api.GET("/competitions/:id/attendance", competitions.Attendance)

		api.PUT("/attendance", attendance.Set)
		api.PUT("/attendance/fee", attendance.SetFee)
		api.DELETE("/attendance/:participant_id/:competition_id", attendance.Remove)

		api.GET("/reports/participants/:id", reports.Participant)
		api.GET("/reports/competitions/:id", reports.Competition)
		api.GET("/export", reports.Export)
	}
	return r
}

// RequirePassword rejects requests without the site passphrase
func RequirePassword(engine *service.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !engine.CheckPassword(c.GetHeader(PasswordHeader)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid site password"})
			return
		}
		c.Next()
	}
}

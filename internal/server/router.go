package server

import (
	"net/http"

	"giras/internal/config"
	"giras/internal/handlers"
	"giras/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("giras_session", store))

	r.Use(middleware.InjectActor())

	api := r.Group("/api")

	// PÉRIODES
	api.GET("/periodes", handlers.ListerPeriodes)
	api.GET("/periodes/resolution", handlers.ResoudrePeriode)
	api.GET("/periodes/:ref/archives", handlers.ArchivesPeriode)
	api.POST("/periodes/cloture", handlers.CloturerPeriode)

	// PROBABILITÉS PAR RISQUE
	api.GET("/risques/:code/probabilites/:periode", handlers.LireProbabilite)
	api.POST("/risques/:code/probabilites", handlers.EnregistrerProbabilite)
	api.DELETE("/risques/:code/probabilites/:periode", handlers.SupprimerProbabilite)

	// OCCURRENCES D'INDICATEURS
	api.POST("/occurrences/reconciliation", handlers.ReconcilierOccurrences)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}

package handlers

import (
	"fmt"
	"net/http"

	"giras/internal/database"
	"giras/internal/reconcile"

	"github.com/gin-gonic/gin"
)

// POST /api/occurrences/reconciliation
//
// Crée les occurrences de mesure manquantes pour la période ouverte.
// Rejouable : une exécution sans manque est un non-événement.
func ReconcilierOccurrences(c *gin.Context) {
	res, err := reconcile.Occurrences(c.Request.Context(), database.DB, log)
	if err != nil {
		repondreErreur(c, err, false)
		return
	}

	database.Journaliser(utilisateur(c), "occurrence", res.Periode, "reconciliation",
		fmt.Sprintf("%d occurrence(s) créée(s) sur %d indicateur(s) actif(s)",
			res.OccurrencesCreees, res.IndicateursActifs))
	c.JSON(http.StatusOK, res)
}

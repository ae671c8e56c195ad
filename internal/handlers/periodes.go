package handlers

import (
	"fmt"
	"net/http"

	"giras/internal/database"
	"giras/internal/models"
	"giras/internal/periodes"
	"giras/internal/reconcile"

	"github.com/gin-gonic/gin"
)

// ====== CATALOGUE DES PÉRIODES ======

// GET /api/periodes
func ListerPeriodes(c *gin.Context) {
	var catalogue []models.Periode
	if err := database.DB.WithContext(c.Request.Context()).
		Order("date_debut desc").
		Find(&catalogue).Error; err != nil {
		repondreErreur(c, err, true)
		return
	}

	vues := make([]periodes.Canonique, 0, len(catalogue))
	for _, p := range catalogue {
		vues = append(vues, periodes.Canonicaliser(p))
	}
	c.JSON(http.StatusOK, gin.H{"periodes": vues})
}

// GET /api/periodes/resolution?ref=
//
// Résolution d'une référence libre vers la période canonique. Référence
// vide = période ouverte courante. 404 quand rien ne correspond : les
// appelants dégradent sans erreur dure.
func ResoudrePeriode(c *gin.Context) {
	per, err := periodes.ResoudreEnBase(c.Request.Context(), database.DB, c.Query("ref"))
	if err != nil {
		repondreErreur(c, err, true)
		return
	}
	if per == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "aucune période ne correspond à cette référence"})
		return
	}

	c.JSON(http.StatusOK, per)
}

// POST /api/periodes/cloture
//
// Clôture de la période visée (ouverte courante si corps vide) : archivage
// des probabilités de tous les risques actifs puis passage du statut à
// "Clôturée".
func CloturerPeriode(c *gin.Context) {
	var corps struct {
		Periode string `json:"periode"`
	}
	_ = c.ShouldBindJSON(&corps) // corps vide toléré

	agent := utilisateur(c)

	bilan, err := reconcile.CloturerPeriode(
		c.Request.Context(), database.DB, magasin, log, corps.Periode, agent)
	if err != nil {
		repondreErreur(c, err, false)
		return
	}

	database.Journaliser(agent, "periode", bilan.Periode, "cloture",
		fmt.Sprintf("dérivées %d, reprises %d, ignorées %d",
			bilan.Derivees, bilan.Reprises, bilan.Ignorees))
	c.JSON(http.StatusOK, bilan)
}

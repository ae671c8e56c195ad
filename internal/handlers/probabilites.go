package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"giras/internal/database"
	"giras/internal/probabilites"
	"giras/internal/scoring"

	"github.com/gin-gonic/gin"
)

// ====== PROBABILITÉS PAR RISQUE ET PÉRIODE ======

type saisieProbabilite struct {
	Periode      string `json:"periode"` // référence libre, vide = période ouverte
	Probabilite  string `json:"probabilite"`
	Commentaires string `json:"commentaires"`
	Responsable  string `json:"responsable"`

	DateLimiteSaisie *time.Time `json:"date_limite_saisie"`
	DateSaisie       *time.Time `json:"date_saisie"`
}

// GET /api/risques/:code/probabilites/:periode
func LireProbabilite(c *gin.Context) {
	code := c.Param("code")

	vue, err := magasin.Lire(c.Request.Context(), code, c.Param("periode"))
	if err != nil {
		repondreErreur(c, err, true)
		return
	}
	if vue == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("aucune probabilité enregistrée pour le risque %s sur cette période", code),
		})
		return
	}

	c.JSON(http.StatusOK, vue)
}

// POST /api/risques/:code/probabilites
//
// Une probabilité vide sur une ligne existante non archivée vaut demande
// d'effacement : la ligne est supprimée, jamais mise à nul.
func EnregistrerProbabilite(c *gin.Context) {
	code := c.Param("code")

	var saisie saisieProbabilite
	if err := c.ShouldBindJSON(&saisie); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête illisible"})
		return
	}

	agent := utilisateur(c)

	if strings.TrimSpace(saisie.Probabilite) == "" {
		n, err := magasin.Supprimer(c.Request.Context(), code, saisie.Periode)
		if err != nil {
			repondreErreur(c, err, false)
			return
		}
		database.Journaliser(agent, "probabilite", code, "suppression",
			fmt.Sprintf("effacement via saisie vide, période %q, %d ligne(s)", saisie.Periode, n))
		c.JSON(http.StatusOK, gin.H{"supprimees": n})
		return
	}

	valeur := scoring.ParseNombre(saisie.Probabilite)
	if valeur == nil || *valeur != float64(int(*valeur)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "probabilité illisible, entier 1..4 attendu"})
		return
	}
	prob := int(*valeur)

	ligne, err := magasin.Upsert(c.Request.Context(), probabilites.Demande{
		CodeRisque:   code,
		PeriodeRef:   saisie.Periode,
		Modificateur: agent,
		Analyse: &probabilites.Analyse{
			Probabilite:      &prob,
			Commentaires:     saisie.Commentaires,
			Responsable:      saisie.Responsable,
			DateLimiteSaisie: saisie.DateLimiteSaisie,
			DateSaisie:       saisie.DateSaisie,
		},
	})
	if err != nil {
		repondreErreur(c, err, false)
		return
	}

	database.Journaliser(agent, "probabilite", code, "upsert",
		fmt.Sprintf("période %q, probabilité %d", ligne.Periode, ligne.Probabilite))
	c.JSON(http.StatusOK, ligne)
}

// DELETE /api/risques/:code/probabilites/:periode
func SupprimerProbabilite(c *gin.Context) {
	code := c.Param("code")

	n, err := magasin.Supprimer(c.Request.Context(), code, c.Param("periode"))
	if err != nil {
		repondreErreur(c, err, false)
		return
	}
	if n == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("aucune probabilité à supprimer pour le risque %s sur cette période", code),
		})
		return
	}

	database.Journaliser(utilisateur(c), "probabilite", code, "suppression",
		fmt.Sprintf("période %q, %d ligne(s)", c.Param("periode"), n))
	c.JSON(http.StatusOK, gin.H{"supprimees": n})
}

// GET /api/periodes/:ref/archives
func ArchivesPeriode(c *gin.Context) {
	vues, err := magasin.Archives(c.Request.Context(), c.Param("ref"))
	if err != nil {
		repondreErreur(c, err, true)
		return
	}

	c.JSON(http.StatusOK, gin.H{"archives": vues})
}

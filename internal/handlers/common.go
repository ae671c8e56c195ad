package handlers

import (
	"errors"
	"net/http"

	"giras/internal/logger"
	"giras/internal/probabilites"

	"github.com/gin-gonic/gin"
)

var (
	magasin *probabilites.Store
	log     *logger.Logger
)

// Configurer branche les handlers sur le magasin de probabilités et le
// logger. À appeler une fois au démarrage, avant le montage du routeur.
func Configurer(store *probabilites.Store, l *logger.Logger) {
	magasin = store
	log = l.With("composant", "handlers")
}

// utilisateur relit l'identité posée par middleware.InjectActor.
func utilisateur(c *gin.Context) string {
	if u, ok := c.Get("Utilisateur"); ok {
		if s, ok := u.(string); ok {
			return s
		}
	}
	return ""
}

// repondreErreur traduit la taxonomie d'erreurs du noyau en codes HTTP.
// Une période irrésoluble vaut 404 en lecture (échec doux) mais 400 en
// écriture (champ obligatoire invalide).
func repondreErreur(c *gin.Context, err error, lecture bool) {
	switch {
	case errors.Is(err, probabilites.ErrProbabiliteVide):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, probabilites.ErrArchiveProtegee):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, probabilites.ErrPeriodeIntrouvable):
		if lecture {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
	case errors.Is(err, probabilites.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		// erreur de stockage : remontée telle quelle, pas de relance ici
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

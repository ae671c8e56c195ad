package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// InjectActor met à disposition l'identité de l'agent à l'origine de la
// requête (champ modificateur / archive_par des photographies). Prend la
// valeur de session si elle existe, sinon l'en-tête X-Utilisateur posé
// par le portail en amont. L'authentification elle-même est portée par ce
// portail, pas par ce service.
func InjectActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if u, ok := sess.Get("utilisateur").(string); ok && strings.TrimSpace(u) != "" {
			c.Set("Utilisateur", strings.TrimSpace(u))
		} else if h := strings.TrimSpace(c.GetHeader("X-Utilisateur")); h != "" {
			c.Set("Utilisateur", h)
		}

		c.Next()
	}
}

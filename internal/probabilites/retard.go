package probabilites

import (
	"time"

	"giras/internal/models"
)

// JoursDeRetard compte les jours calendaires entre la date limite et la
// date de saisie, borné à zéro (une saisie en avance n'est pas un retard
// négatif).
func JoursDeRetard(saisie, limite time.Time) int {
	j := int(jour(saisie).Sub(jour(limite)).Hours() / 24)
	if j < 0 {
		return 0
	}
	return j
}

func jour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NiveauDeRetard classe un nombre de jours de retard.
func NiveauDeRetard(jours int) string {
	switch {
	case jours <= 0:
		return models.RetardAucun
	case jours <= 7:
		return models.RetardFaible
	case jours <= 30:
		return models.RetardMoyen
	default:
		return models.RetardEleve
	}
}

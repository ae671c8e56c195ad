package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"giras/internal/logger"
	"giras/internal/models"
	"giras/internal/periodes"
	"giras/internal/probabilites"
	"giras/internal/scoring"

	"gorm.io/gorm"
)

type BilanCloture struct {
	Periode  string `json:"periode"`
	Derivees int    `json:"probabilites_derivees"` // dérivées d'un indicateur
	Reprises int    `json:"probabilites_reprises"` // saisies manuelles archivées telles quelles
	Ignorees int    `json:"risques_ignores"`       // aucun résultat dérivable ni saisie existante
	Cloturee bool   `json:"periode_cloturee"`
}

// CloturerPeriode archive les probabilités de tous les risques actifs pour
// la période visée (ouverte courante si référence vide), puis passe la
// période à "Clôturée". Pour un risque quantitatif à indicateur lié, la
// probabilité est dérivée de la valeur mesurée par le classement à seuils
// (ind_obtenu="Oui") ; sinon la saisie manuelle existante est archivée
// telle quelle. Un risque sans aucune valeur déterminable est ignoré avec
// avertissement : une lacune ne bloque pas la clôture des autres.
func CloturerPeriode(ctx context.Context, db *gorm.DB, store *probabilites.Store, log *logger.Logger, ref, utilisateur string) (*BilanCloture, error) {
	per, err := periodes.ResoudreEnBase(ctx, db, ref)
	if err != nil {
		return nil, err
	}
	if per == nil {
		return nil, fmt.Errorf("%w: %q", probabilites.ErrPeriodeIntrouvable, ref)
	}
	if !per.Ouverte {
		return nil, fmt.Errorf("%w: la période %q est déjà clôturée", probabilites.ErrValidation, per.Libelle)
	}

	var risques []models.Risque
	if err := db.WithContext(ctx).
		Where("statut = ?", models.RisqueActif).
		Find(&risques).Error; err != nil {
		return nil, err
	}

	var indicateurs []models.Indicateur
	var occurrences []models.IndicateurOccurrence
	if err := db.WithContext(ctx).Find(&indicateurs).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).
		Where("periode IN ?", per.Formes).
		Find(&occurrences).Error; err != nil {
		return nil, err
	}

	indParCode := make(map[string]models.Indicateur, len(indicateurs))
	for _, ind := range indicateurs {
		indParCode[ind.CodeIndicateur] = ind
	}
	occParCode := make(map[string]models.IndicateurOccurrence, len(occurrences))
	for _, occ := range occurrences {
		occParCode[occ.CodeIndicateur] = occ
	}

	bilan := &BilanCloture{Periode: per.Libelle}

	for _, r := range risques {
		demande := probabilites.Demande{
			CodeRisque:   r.CodeRisque,
			PeriodeRef:   per.ID,
			Modificateur: utilisateur,
			Archiver:     true,
		}
		derivee := false

		if r.Nature == models.NatureQuantitatif && r.CodeIndicateur != nil {
			if ind, ok := indParCode[*r.CodeIndicateur]; ok {
				if occ, ok := occParCode[ind.CodeIndicateur]; ok && occ.Valeur != nil {
					prob := scoring.IndiceProbabilite(
						occ.Valeur, ind.Seuil1, ind.Seuil2, ind.Seuil3,
						scoring.NormaliserSens(ind.Sens))
					if prob != nil {
						demande.Analyse = &probabilites.Analyse{
							Probabilite: prob,
							Commentaires: fmt.Sprintf(
								"Probabilité dérivée de l'indicateur %s (valeur mesurée %v)",
								ind.CodeIndicateur, *occ.Valeur),
							DateSaisie: occ.DateSaisie,
						}
						demande.IndObtenu = models.Oui
						derivee = true
					}
				}
			}
		}

		if _, err := store.Upsert(ctx, demande); err != nil {
			if errors.Is(err, probabilites.ErrProbabiliteVide) || errors.Is(err, probabilites.ErrValidation) {
				log.Warn("clôture : risque sans photographie archivable, ignoré",
					"code_risque", r.CodeRisque, "periode", per.Libelle, "cause", err)
				bilan.Ignorees++
				continue
			}
			return nil, err
		}
		if derivee {
			bilan.Derivees++
		} else {
			bilan.Reprises++
		}
	}

	if err := db.WithContext(ctx).Model(&models.Periode{}).
		Where("id = ?", per.ID).
		Updates(map[string]interface{}{
			"statut":     models.PeriodeCloturee,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return nil, err
	}
	bilan.Cloturee = true

	log.Info("période clôturée",
		"periode", per.Libelle, "derivees", bilan.Derivees,
		"reprises", bilan.Reprises, "ignorees", bilan.Ignorees)
	return bilan, nil
}

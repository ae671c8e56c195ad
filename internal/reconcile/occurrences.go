// Package reconcile porte les traitements par lot sur la période ouverte :
// création des occurrences de mesure manquantes et synchronisation des
// probabilités à la clôture.
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"giras/internal/logger"
	"giras/internal/models"
	"giras/internal/periodes"
	"giras/internal/probabilites"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Resultat struct {
	Periode               string `json:"periode"`
	IndicateursActifs     int    `json:"indicateurs_actifs"`
	OccurrencesExistantes int    `json:"occurrences_existantes"`
	OccurrencesCreees     int    `json:"occurrences_creees"`
}

// Occurrences garantit que chaque indicateur actif du groupe "Risque"
// possède exactement une occurrence de mesure pour la période ouverte.
// Rejouable sans effet : la différence d'ensembles évite les doublons, la
// contrainte d'unicité en base rattrape toute course résiduelle.
func Occurrences(ctx context.Context, db *gorm.DB, log *logger.Logger) (*Resultat, error) {
	per, err := periodes.ResoudreEnBase(ctx, db, "")
	if err != nil {
		return nil, err
	}
	if per == nil {
		return nil, fmt.Errorf("%w: aucune période ouverte", probabilites.ErrValidation)
	}

	var indicateurs []models.Indicateur
	var existantes []models.IndicateurOccurrence

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return db.WithContext(gctx).
			Where("statut = ?", models.IndicateurActif).
			Find(&indicateurs).Error
	})
	g.Go(func() error {
		return db.WithContext(gctx).
			Where("periode IN ?", per.Formes).
			Find(&existantes).Error
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var suivis []models.Indicateur
	for _, ind := range indicateurs {
		if groupeContient(ind.Groupes, models.GroupeRisque) {
			suivis = append(suivis, ind)
		}
	}

	codesSuivis := make(map[string]bool, len(suivis))
	for _, ind := range suivis {
		codesSuivis[ind.CodeIndicateur] = true
	}
	deja := make(map[string]bool, len(existantes))
	for _, occ := range existantes {
		if codesSuivis[occ.CodeIndicateur] {
			deja[occ.CodeIndicateur] = true
		}
	}

	var manquantes []models.IndicateurOccurrence
	for _, ind := range suivis {
		if deja[ind.CodeIndicateur] {
			continue
		}
		limite := per.DateLimiteSaisie
		if limite == nil {
			fin := per.DateFin
			limite = &fin
		}
		debut := per.DateDebut
		fin := per.DateFin
		manquantes = append(manquantes, models.IndicateurOccurrence{
			CodeIndicateur:   ind.CodeIndicateur,
			Periode:          per.Libelle,
			DateLimite:       limite,
			Statut:           models.RetardAucun,
			JoursRetard:      0,
			Archive:          models.Non,
			DateDebutPeriode: &debut,
			DateFinPeriode:   &fin,
		})
	}

	res := &Resultat{
		Periode:               per.Libelle,
		IndicateursActifs:     len(suivis),
		OccurrencesExistantes: len(existantes),
	}
	if len(manquantes) == 0 {
		return res, nil
	}

	// DO NOTHING : une course entre deux exécutions ne crée pas de doublon
	out := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code_indicateur"}, {Name: "periode"}},
			DoNothing: true,
		}).
		Create(&manquantes)
	if out.Error != nil {
		return nil, out.Error
	}
	res.OccurrencesCreees = int(out.RowsAffected)

	log.Info("occurrences réconciliées",
		"periode", per.Libelle, "creees", res.OccurrencesCreees,
		"existantes", res.OccurrencesExistantes)
	return res, nil
}

// groupeContient lit l'appartenance aux groupes telle qu'elle arrive de la
// base : tableau JSON, ou tableau JSON encodé une seconde fois dans une
// chaîne selon l'outil qui a alimenté la colonne.
func groupeContient(brut []byte, groupe string) bool {
	if len(brut) == 0 {
		return false
	}

	var groupes []string
	if err := json.Unmarshal(brut, &groupes); err != nil {
		var enchaine string
		if err := json.Unmarshal(brut, &enchaine); err != nil {
			return false
		}
		if err := json.Unmarshal([]byte(enchaine), &groupes); err != nil {
			// chaîne simple, pas un tableau encodé
			groupes = []string{enchaine}
		}
	}

	for _, g := range groupes {
		if strings.EqualFold(strings.TrimSpace(g), groupe) {
			return true
		}
	}
	return false
}

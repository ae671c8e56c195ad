// Package periodes résout une référence de période libre (UUID, clé courte
// "S1-2025", libellé humain, année nue, ou vide = période ouverte courante)
// vers l'enregistrement canonique du catalogue. La résolution ne lève jamais
// d'erreur sur un catalogue mal formé : au pire elle rend nil.
package periodes

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"giras/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Canonique est la vue normalisée d'une période, quel que soit l'état
// des colonnes du catalogue sous-jacent.
type Canonique struct {
	ID               string
	Libelle          string // libellé d'affichage, ex: "Semestre 1 2025"
	CleCourte        string // clé compacte, ex: "S1-2025"
	Annee            int
	DateDebut        time.Time
	DateFin          time.Time
	DateLimiteSaisie *time.Time
	Ouverte          bool

	// toutes les formes textuelles connues de la période (libellé stocké,
	// libellé dérivé, clé courte). Servent à rattraper les lignes écrites
	// sous d'anciennes conventions de libellé.
	Formes []string
}

var moisFrancais = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// Canonicaliser construit la vue canonique d'une ligne du catalogue :
// libellé stocké s'il existe, sinon dérivé de la granularité.
func Canonicaliser(p models.Periode) Canonique {
	c := Canonique{
		ID:               p.ID,
		Annee:            p.Annee,
		DateDebut:        p.DateDebut,
		DateFin:          p.DateFin,
		DateLimiteSaisie: p.DateLimiteSaisie,
		Ouverte:          p.EstOuverte(),
	}

	switch {
	case p.Semestre != nil:
		c.Libelle = fmt.Sprintf("Semestre %d %d", *p.Semestre, p.Annee)
		c.CleCourte = fmt.Sprintf("S%d-%d", *p.Semestre, p.Annee)
	case p.Trimestre != nil:
		c.Libelle = fmt.Sprintf("Trimestre %d %d", *p.Trimestre, p.Annee)
		c.CleCourte = fmt.Sprintf("T%d-%d", *p.Trimestre, p.Annee)
	case p.Mois != nil && *p.Mois >= 1 && *p.Mois <= 12:
		c.Libelle = fmt.Sprintf("%s %d", moisFrancais[*p.Mois-1], p.Annee)
		c.CleCourte = fmt.Sprintf("M%d-%d", *p.Mois, p.Annee)
	default:
		c.Libelle = strconv.Itoa(p.Annee)
		c.CleCourte = strconv.Itoa(p.Annee)
	}

	derive := c.Libelle

	// un libellé saisi à la main prime sur la forme dérivée
	if p.Libelle != nil && strings.TrimSpace(*p.Libelle) != "" {
		c.Libelle = strings.TrimSpace(*p.Libelle)
	}

	// la forme dérivée reste un alias valide même masquée par le libellé
	// stocké : des photographies ont pu être écrites sous l'une ou l'autre
	c.Formes = append(c.Formes, c.Libelle, c.CleCourte)
	if derive != c.Libelle {
		c.Formes = append(c.Formes, derive)
	}

	return c
}

// Alias retourne les formes textuelles acceptées pour désigner cette
// période : id, libellé stocké, libellé dérivé, clé courte. L'année nue
// est traitée à part dans la résolution (préférence aux périodes
// ouvertes), elle ne fait pas partie des alias exacts.
func Alias(p models.Periode) []string {
	c := Canonicaliser(p)
	return append([]string{c.ID}, c.Formes...)
}

func normaliser(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

var anneeRe = regexp.MustCompile(`\d{4}`)

// Resoudre applique l'ordre de précédence fixe :
//  1. référence vide -> période ouverte la plus récemment démarrée
//  2. id exact (UUID)
//  3. correspondance exacte avec un alias
//  4. année nue -> périodes de l'année, préférence aux ouvertes,
//     acceptée si candidate unique
//  5. année contenue dans la référence -> période ouverte de cette année
//  6. repli sur la période ouverte courante
func Resoudre(ref string, catalogue []models.Periode) *Canonique {
	ref = strings.TrimSpace(ref)

	if ref == "" {
		return ouverteCourante(catalogue)
	}

	if id, err := uuid.Parse(ref); err == nil {
		for _, p := range catalogue {
			if strings.EqualFold(p.ID, id.String()) {
				c := Canonicaliser(p)
				return &c
			}
		}
	}

	cible := normaliser(ref)
	for _, p := range catalogue {
		for _, a := range Alias(p) {
			if normaliser(a) == cible {
				c := Canonicaliser(p)
				return &c
			}
		}
	}

	if annee, err := strconv.Atoi(ref); err == nil && len(ref) == 4 {
		var candidates []models.Periode
		for _, p := range catalogue {
			if p.Annee == annee {
				candidates = append(candidates, p)
			}
		}
		var ouvertes []models.Periode
		for _, p := range candidates {
			if p.EstOuverte() {
				ouvertes = append(ouvertes, p)
			}
		}
		if len(ouvertes) > 0 {
			candidates = ouvertes
		}
		if len(candidates) == 1 {
			c := Canonicaliser(candidates[0])
			return &c
		}
		return ouverteCourante(catalogue)
	}

	if m := anneeRe.FindString(ref); m != "" {
		var meilleure *models.Periode
		for i, p := range catalogue {
			if !p.EstOuverte() {
				continue
			}
			c := Canonicaliser(p)
			if !strings.Contains(c.Libelle, m) && !strings.Contains(c.CleCourte, m) {
				continue
			}
			if meilleure == nil || p.DateDebut.After(meilleure.DateDebut) {
				meilleure = &catalogue[i]
			}
		}
		if meilleure != nil {
			c := Canonicaliser(*meilleure)
			return &c
		}
	}

	return ouverteCourante(catalogue)
}

func ouverteCourante(catalogue []models.Periode) *Canonique {
	var meilleure *models.Periode
	for i, p := range catalogue {
		if !p.EstOuverte() {
			continue
		}
		if meilleure == nil || p.DateDebut.After(meilleure.DateDebut) {
			meilleure = &catalogue[i]
		}
	}
	if meilleure == nil {
		return nil
	}
	c := Canonicaliser(*meilleure)
	return &c
}

// ResoudreEnBase charge le catalogue puis résout la référence.
// nil sans erreur quand la référence ne correspond à rien (échec doux).
func ResoudreEnBase(ctx context.Context, db *gorm.DB, ref string) (*Canonique, error) {
	var catalogue []models.Periode
	if err := db.WithContext(ctx).Find(&catalogue).Error; err != nil {
		return nil, err
	}
	return Resoudre(ref, catalogue), nil
}

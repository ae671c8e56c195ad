// Package scoring regroupe les calculs purs de cotation des risques :
// indice de probabilité dérivé d'un indicateur, impact net, criticité.
// Toutes les fonctions sont totales : entrée invalide => nil, jamais de panique.
package scoring

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Sens de lecture d'un indicateur.
type Sens int

const (
	// valeur haute = risque élevé (défaut conservateur)
	SensDefavorable Sens = iota
	// valeur haute = risque faible
	SensFavorable
)

// NormaliserSens ramène les variantes rencontrées en base ("Favorable",
// "positif", "Défavorable", vide, etc.) aux deux sens canoniques. Tout
// jeton inconnu retombe sur le sens défavorable : en cas de doute on
// suppose le risque le plus élevé.
func NormaliserSens(token string) Sens {
	t := strings.ToLower(strings.TrimSpace(token))
	switch {
	case strings.Contains(t, "defavorable"), strings.Contains(t, "défavorable"),
		strings.Contains(t, "negatif"), strings.Contains(t, "négatif"):
		return SensDefavorable
	case strings.Contains(t, "favorable"), strings.Contains(t, "positif"),
		t == "croissant", t == "hausse":
		return SensFavorable
	default:
		return SensDefavorable
	}
}

// ParseNombre lit un nombre tel qu'il arrive de la base ou d'un formulaire :
// numérique déjà typé, ou texte avec virgule décimale. nil si illisible.
func ParseNombre(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case *float64:
		return n
	case *int:
		if n == nil {
			return nil
		}
		f := float64(*n)
		return &f
	case *string:
		if n == nil {
			return nil
		}
		return ParseNombre(*n)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", "."))
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// IndiceProbabilite classe une valeur mesurée sur l'échelle 1..4 à partir
// des trois seuils de l'indicateur. Les seuils sont triés en interne :
// l'ordre de saisie en base ne doit pas changer le résultat.
func IndiceProbabilite(valeur, seuil1, seuil2, seuil3 any, sens Sens) *int {
	v := ParseNombre(valeur)
	s1 := ParseNombre(seuil1)
	s2 := ParseNombre(seuil2)
	s3 := ParseNombre(seuil3)
	if v == nil || s1 == nil || s2 == nil || s3 == nil {
		return nil
	}

	seuils := []float64{*s1, *s2, *s3}
	sort.Float64s(seuils)
	a, b, c := seuils[0], seuils[1], seuils[2]

	var indice int
	if sens == SensFavorable {
		// valeur haute = situation saine
		switch {
		case *v >= c:
			indice = 1
		case *v >= b:
			indice = 2
		case *v >= a:
			indice = 3
		default:
			indice = 4
		}
	} else {
		switch {
		case *v <= a:
			indice = 1
		case *v <= b:
			indice = 2
		case *v <= c:
			indice = 3
		default:
			indice = 4
		}
	}
	return &indice
}

// ImpactNet pondère l'impact brut par l'efficacité du dispositif de
// maîtrise : impact * (1 - efficacité/100), arrondi à 2 décimales.
// Une efficacité absente ou illisible vaut 0 (aucune maîtrise).
func ImpactNet(impact, efficacite any) *float64 {
	i := ParseNombre(impact)
	if i == nil {
		return nil
	}
	eff := 0.0
	if e := ParseNombre(efficacite); e != nil {
		eff = *e
	}
	r := arrondi2(*i * (1 - eff/100))
	return &r
}

// Criticite = impact x probabilité, arrondi à 2 décimales.
func Criticite(impact, probabilite any) *float64 {
	i := ParseNombre(impact)
	p := ParseNombre(probabilite)
	if i == nil || p == nil {
		return nil
	}
	r := arrondi2(*i * *p)
	return &r
}

type NiveauCriticite struct {
	Libelle string
	Indice  int
}

// NiveauDeCriticite place un score de criticité dans l'une des quatre
// bandes de sévérité. Bornes fixes, non configurables.
func NiveauDeCriticite(score any) *NiveauCriticite {
	s := ParseNombre(score)
	if s == nil {
		return nil
	}
	switch {
	case *s <= 3:
		return &NiveauCriticite{Libelle: "Faible", Indice: 1}
	case *s <= 6:
		return &NiveauCriticite{Libelle: "Modéré", Indice: 2}
	case *s <= 9:
		return &NiveauCriticite{Libelle: "Significatif", Indice: 3}
	default:
		return &NiveauCriticite{Libelle: "Critique", Indice: 4}
	}
}

func arrondi2(f float64) float64 {
	return math.Round(f*100) / 100
}

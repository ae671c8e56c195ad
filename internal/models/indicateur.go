package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	IndicateurActif   = "Actif"
	IndicateurInactif = "Inactif"

	// groupe d'indicateurs rattachés au suivi des risques
	GroupeRisque = "Risque"
)

// Catalogue des indicateurs (KPI). Les seuils sont stockés en texte tel
// que saisi (virgule décimale tolérée), le classement les normalise.
type Indicateur struct {
	gorm.Model
	CodeIndicateur string `gorm:"column:code_indicateur;size:32;uniqueIndex"` // Ex: IND-042
	Intitule       string `gorm:"size:255;not null"`

	// appartenance aux groupes : tableau JSON, parfois doublement encodé
	// (chaîne JSON dans la colonne) selon l'outil qui a alimenté la base
	Groupes datatypes.JSON

	Seuil1 *string `gorm:"size:32"`
	Seuil2 *string `gorm:"size:32"`
	Seuil3 *string `gorm:"size:32"`
	Sens   string  `gorm:"size:32"` // sens de lecture : favorable / défavorable (synonymes tolérés)

	Responsable string `gorm:"size:128"`
	Statut      string `gorm:"type:varchar(20);not null;default:'Actif'"`
}

func (Indicateur) TableName() string { return "indicateurs" }

// Occurrence de mesure d'un indicateur pour une période. La valeur reste
// nulle tant que la mesure n'a pas été soumise.
type IndicateurOccurrence struct {
	ID uint `gorm:"primaryKey"`

	CodeIndicateur string `gorm:"column:code_indicateur;size:32;not null;uniqueIndex:idx_indicateur_periode"`
	Periode        string `gorm:"size:64;not null;uniqueIndex:idx_indicateur_periode"`

	Valeur     *float64
	DateLimite *time.Time `gorm:"type:date"`
	DateSaisie *time.Time `gorm:"type:date"`

	Statut      string `gorm:"size:32;not null;default:'Pas retard'"`
	JoursRetard int    `gorm:"not null;default:0"`
	Archive     string `gorm:"size:8;not null;default:'Non'"`

	// bornes de la période copiées à la création
	DateDebutPeriode *time.Time `gorm:"type:date"`
	DateFinPeriode   *time.Time `gorm:"type:date"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (IndicateurOccurrence) TableName() string { return "indicateurs_occurrences" }

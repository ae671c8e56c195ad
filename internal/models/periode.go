package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StatutPeriode string

const (
	PeriodeOuverte  StatutPeriode = "Ouverte"
	PeriodeCloturee StatutPeriode = "Clôturée"
)

// Période d'évaluation : une fenêtre temporelle (année + granularité
// semestre/trimestre/mois facultative). Le libellé stocké est optionnel,
// certains déploiements ne renseignent que l'année et la granularité.
type Periode struct {
	ID      string  `gorm:"type:uuid;primaryKey"`
	Libelle *string `gorm:"size:128"` // libellé humain s'il a été saisi

	Annee     int  `gorm:"not null"`
	Semestre  *int // 1 ou 2
	Trimestre *int // 1..4
	Mois      *int // 1..12

	DateDebut        time.Time  `gorm:"type:date;not null"`
	DateFin          time.Time  `gorm:"type:date;not null"`
	DateLimiteSaisie *time.Time `gorm:"type:date"` // échéance de saisie des probabilités

	Statut StatutPeriode `gorm:"type:varchar(20);not null;default:'Ouverte'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Periode) TableName() string { return "periodes" }

func (p *Periode) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// EstOuverte tolère les deux orthographes rencontrées en base
// ("Ouvert" / "Ouverte"), quelle que soit la casse.
func (p Periode) EstOuverte() bool {
	return strings.HasPrefix(strings.ToLower(string(p.Statut)), "ouvert")
}

package models

import "gorm.io/gorm"

type NatureRisque string
type StatutRisque string

const (
	NatureQuantitatif NatureRisque = "Quantitatif"
	NatureQualitatif  NatureRisque = "Qualitatif"

	RisqueActif   StatutRisque = "Actif"
	RisqueInactif StatutRisque = "Inactif"
)

// Registre des risques (un risque = un code métier unique)
type Risque struct {
	gorm.Model
	CodeRisque  string `gorm:"column:code_risque;size:32;uniqueIndex"` // Ex: R-FIN-001
	Intitule    string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`

	Impact             int `gorm:"not null;default:1"` // impact brut 1..4
	EfficaciteControle int `gorm:"not null;default:0"` // % de maîtrise du risque 0..100

	Nature         NatureRisque `gorm:"type:varchar(20);not null;default:'Qualitatif'"`
	CodeIndicateur *string      `gorm:"column:code_indicateur;size:32"` // indicateur lié (risques quantitatifs)

	Processus string `gorm:"size:128"` // processus métier concerné
	Structure string `gorm:"size:128"` // structure organisationnelle responsable

	Statut StatutRisque `gorm:"type:varchar(20);not null;default:'Actif'"`
}

func (Risque) TableName() string { return "risques" }

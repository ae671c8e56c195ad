package models

import "time"

type JournalAudit struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	Utilisateur string `gorm:"size:128"`

	Entite   string `gorm:"size:50;not null"` // "probabilite", "periode", "occurrence"
	EntiteID string `gorm:"size:64"`
	Action   string `gorm:"size:50;not null"` // "upsert", "suppression", "cloture", "reconciliation"
	Details  string `gorm:"type:text"`
}

func (JournalAudit) TableName() string { return "journal_audit" }

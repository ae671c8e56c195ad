package database

import "giras/internal/models"

// helper d'écriture dans le journal d'audit
func Journaliser(utilisateur, entite, entiteID, action, details string) {
	if DB == nil {
		return
	}
	ligne := models.JournalAudit{
		Utilisateur: utilisateur,
		Entite:      entite,
		EntiteID:    entiteID,
		Action:      action,
		Details:     details,
	}
	_ = DB.Create(&ligne).Error
}

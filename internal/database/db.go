package database

import (
	"time"

	"giras/internal/logger"
	"giras/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(dsn string, log *logger.Logger) {
	var err error

	const maxTentatives = 10
	for i := 1; i <= maxTentatives; i++ {
		log.Info("connexion à la base", "tentative", i, "max", maxTentatives)

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			log.Info("connexion à la base réussie")
			break
		}

		log.Warn("connexion à la base refusée", "erreur", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatal("base injoignable", "tentatives", maxTentatives, "erreur", err)
	}

	// migrations
	err = DB.AutoMigrate(
		&models.Risque{},
		&models.Periode{},
		&models.RisqueProbabilite{},
		&models.Indicateur{},
		&models.IndicateurOccurrence{},
		&models.JournalAudit{},
	)
	if err != nil {
		log.Fatal("échec des migrations", "erreur", err)
	}
}

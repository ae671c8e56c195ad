package main

import (
	"fmt"

	"giras/internal/config"
	"giras/internal/database"
	"giras/internal/handlers"
	"giras/internal/logger"
	"giras/internal/probabilites"
	"giras/internal/server"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	database.Init(cfg.DBDSN, log)

	schema, err := probabilites.ChargerSchema(cfg.SchemaDescripteur)
	if err != nil {
		log.Fatal("descripteur de schéma invalide", "erreur", err)
	}

	magasin := probabilites.NewStore(database.DB, schema, log)
	handlers.Configurer(magasin, log)

	r := server.NewRouter(cfg)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Info("démarrage du serveur", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("erreur serveur", "erreur", err)
	}
}

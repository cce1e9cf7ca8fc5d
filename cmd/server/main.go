package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/FabricioIaronka/store-manager/internal/api"
	"github.com/FabricioIaronka/store-manager/internal/config"
	"github.com/FabricioIaronka/store-manager/internal/database"
	"github.com/FabricioIaronka/store-manager/internal/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)

	handler := api.New(db, cfg.Secret)

	log.Printf("store manager API listening on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

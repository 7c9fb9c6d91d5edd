package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/quansodmg/Tournament-sub002/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "tournament.db"
	}

	database := db.InitDB(dbPath)
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	router := newRouter(database, clockwork.NewRealClock())

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}

	log.Println("Server starting on", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal(err)
	}
}

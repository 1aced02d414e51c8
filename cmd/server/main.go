// @title BracketRank API
// @version 1.0
// @description Multi-region competitive-gaming ranking service: pending-tournament intake, player-identity merges, Bayesian skill rankings.

// @host localhost:8080
// @BasePath /

package main

import (
	"log"
	"os"

	"bracketrank/internal/api"
	"bracketrank/internal/config"
	"bracketrank/internal/store"
)

// main takes port and debug as positional CLI arguments (§6) and exits
// non-zero on any unrecoverable startup error.
func main() {
	cfg := config.Load()

	if len(os.Args) > 1 && os.Args[1] != "" {
		cfg.Port = os.Args[1]
	}
	if len(os.Args) > 2 && os.Args[2] == "true" {
		cfg.GinMode = "debug"
	} else if len(os.Args) > 2 {
		cfg.GinMode = "release"
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Println("failed to open database:", err)
		os.Exit(1)
	}
	defer db.Close()

	server := api.NewServer(db, cfg)
	log.Printf("bracketrank server starting on port %s", cfg.Port)
	if err := server.Start(":" + cfg.Port); err != nil {
		log.Println("server exited:", err)
		os.Exit(1)
	}
}

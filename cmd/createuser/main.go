// Command createuser provisions a region-admin user from the CLI. Recovered
// from the original scripts/create_user.py (usage: username password region1
// [region2] ...), adapted to this module's store and auth packages.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"bracketrank/internal/auth"
	"bracketrank/internal/config"
	"bracketrank/internal/models"
	"bracketrank/internal/store"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("usage: createuser username password region1 [region2] [region3]....")
		os.Exit(1)
	}

	username := os.Args[1]
	password := os.Args[2]
	regions := os.Args[3:]

	cfg := config.Load()
	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open database:", err)
	}
	defer db.Close()

	authSvc := auth.New(db, cfg.PBKDF2Iterations)
	user, err := authSvc.CreateUser(context.Background(), username, password, regions, models.AdminLevelRegion)
	if err != nil {
		log.Fatal("failed to create user:", err)
	}
	fmt.Println("user created:", user.Username)
}

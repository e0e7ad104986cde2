// Command seed is the administrative CLI: it populates the database with
// initial principals, locations and sample attendance records, and resets
// passwords. It talks to the same repositories the server uses; nothing
// here is reachable from the HTTP surface.
//
//	seed seed
//	seed reset-password -username john.doe -password newsecret
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/attendance-tracker/internal/config"
	"github.com/iliyamo/attendance-tracker/internal/database"
	"github.com/iliyamo/attendance-tracker/internal/repository"
	"github.com/iliyamo/attendance-tracker/internal/seed"
	"github.com/iliyamo/attendance-tracker/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	repos := seed.Repos{
		Users:       repository.NewUserRepo(db),
		Locations:   repository.NewLocationRepo(db),
		Attendances: repository.NewAttendanceRepo(db),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if len(os.Args) < 2 {
		usage()
	}
	switch os.Args[1] {
	case "seed":
		if err := seed.All(ctx, repos, cfg.BcryptCost, cfg.Timezone()); err != nil {
			log.Fatalf("seed: %v", err)
		}
		fmt.Println("database seeded successfully")
	case "reset-password":
		fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
		username := fs.String("username", "", "username to reset")
		password := fs.String("password", "", "new password")
		_ = fs.Parse(os.Args[2:])
		if *username == "" || *password == "" {
			fs.Usage()
			os.Exit(2)
		}
		if err := repos.Users.SetPassword(ctx, *username, *password, cfg.BcryptCost); err != nil {
			log.Fatalf("reset-password: %v", err)
		}
		// Drop the cached token version so outstanding sessions die now,
		// not when the cache entry expires.
		if rdb := config.NewRedisClient(); rdb != nil {
			service.NewTokenVersions(repos.Users, rdb, cfg.SessionTTL()).Invalidate(ctx, *username)
		}
		fmt.Printf("password for %s reset successfully\n", *username)
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: seed <seed|reset-password> [flags]")
	os.Exit(2)
}

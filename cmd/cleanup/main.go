package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/database"
	"github.com/agendahof/agendahof-server/internal/repository"
)

var (
	dryRun         = flag.Bool("dry-run", true, "Dry run mode, don't actually delete rows")
	cleanReminders = flag.Bool("clean-reminders", true, "Delete delivered reminders past retention")
	cleanCourtesy  = flag.Bool("clean-courtesy", true, "Delete expired courtesy grants")
)

func main() {
	flag.Parse()

	log.Println("Starting cleanup task...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	reminderRepo := repository.NewReminderRepository(db)
	courtesyRepo := repository.NewCourtesyRepository(db)

	now := time.Now()

	if *cleanReminders {
		cutoff := now.AddDate(0, 0, -cfg.Reminder.RetentionDays)
		log.Printf("Cleaning delivered reminders older than %s...", cutoff.Format("2006-01-02"))
		if *dryRun {
			log.Println("Dry run, skipping reminder deletion")
		} else {
			n, err := reminderRepo.DeleteDeliveredBefore(cutoff)
			if err != nil {
				log.Printf("Failed to delete reminders: %v", err)
			} else {
				log.Printf("Deleted %d reminder rows", n)
			}
		}
	}

	if *cleanCourtesy {
		log.Println("Cleaning expired courtesy grants...")
		if *dryRun {
			log.Println("Dry run, skipping courtesy deletion")
		} else {
			n, err := courtesyRepo.DeleteExpiredBefore(now)
			if err != nil {
				log.Printf("Failed to delete courtesy grants: %v", err)
			} else {
				log.Printf("Deleted %d courtesy rows", n)
			}
		}
	}

	log.Println("Cleanup complete")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/database"
	"github.com/agendahof/agendahof-server/internal/pkg/email"
	"github.com/agendahof/agendahof-server/internal/pkg/pubsub"
	"github.com/agendahof/agendahof-server/internal/pkg/queue"
	"github.com/agendahof/agendahof-server/internal/repository"
	"github.com/agendahof/agendahof-server/internal/worker"
)

func main() {
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
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	reminderQueue := queue.NewQueue(rdb, cfg.Queue.ReminderQueue)
	publisher := pubsub.NewPublisher(rdb)
	emailSvc := email.NewService(&cfg.Email)

	reminderRepo := repository.NewReminderRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	dispatcher := worker.NewDispatcher(reminderRepo, appointmentRepo, userRepo, emailSvc, publisher, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	log.Printf("Worker started, max workers: %d", cfg.Queue.MaxWorkers)

	for i := 0; i < cfg.Queue.MaxWorkers; i++ {
		go func(workerID int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("Worker %d shutting down", workerID)
					return
				default:
					msg, err := reminderQueue.Pop(ctx, 5*time.Second)
					if err != nil {
						if ctx.Err() != nil {
							return
						}
						log.Printf("Worker %d: failed to pop message: %v", workerID, err)
						continue
					}

					if msg == nil {
						continue // timeout, keep waiting
					}

					log.Printf("Worker %d: dispatching reminder %d", workerID, msg.ReminderID)
					if err := dispatcher.Process(ctx, msg); err != nil {
						log.Printf("Worker %d: reminder %d failed: %v", workerID, msg.ReminderID, err)
					}
				}
			}
		}(i)
	}

	<-ctx.Done()
	log.Println("Worker shutdown complete")
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/api"
	"github.com/agendahof/agendahof-server/internal/api/handler"
	"github.com/agendahof/agendahof-server/internal/database"
	"github.com/agendahof/agendahof-server/internal/pkg/cron"
	"github.com/agendahof/agendahof-server/internal/pkg/email"
	"github.com/agendahof/agendahof-server/internal/pkg/oauth"
	"github.com/agendahof/agendahof-server/internal/pkg/oss"
	"github.com/agendahof/agendahof-server/internal/pkg/pubsub"
	"github.com/agendahof/agendahof-server/internal/pkg/queue"
	"github.com/agendahof/agendahof-server/internal/pkg/ws"
	"github.com/agendahof/agendahof-server/internal/repository"
	"github.com/agendahof/agendahof-server/internal/service"
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

	// OSS is optional, photo uploads fail gracefully without it
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	reminderQueue := queue.NewQueue(rdb, cfg.Queue.ReminderQueue)
	publisher := pubsub.NewPublisher(rdb)

	wsHub := ws.NewHub()

	userRepo := repository.NewUserRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	commitmentRepo := repository.NewCommitmentRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	courtesyRepo := repository.NewCourtesyRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	emailSvc := email.NewService(&cfg.Email)

	authService := service.NewAuthService(userRepo, emailSvc, cfg)
	userService := service.NewUserService(userRepo, ossClient, cfg)
	patientService := service.NewPatientService(patientRepo, appointmentRepo, ossClient, cfg)
	importService := service.NewImportService(patientRepo)
	entitlementService := service.NewEntitlementService(userRepo, subscriptionRepo, courtesyRepo, cfg)
	billingService := service.NewBillingService(subscriptionRepo, userRepo, cfg)
	reminderService := service.NewReminderService(reminderRepo, reminderQueue, cfg)
	agendaService := service.NewAgendaService(appointmentRepo, commitmentRepo, blockRepo, reminderService, publisher, cfg)

	stateStore := oauth.NewStateStore(rdb)

	authHandler := handler.NewAuthHandler(authService, stateStore)
	userHandler := handler.NewUserHandler(userService)
	patientHandler := handler.NewPatientHandler(patientService, importService)
	agendaHandler := handler.NewAgendaHandler(agendaService)
	blockHandler := handler.NewBlockHandler(agendaService)
	billingHandler := handler.NewBillingHandler(billingService, entitlementService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// forward agenda events from Redis to live websocket clients
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(event *pubsub.AgendaEvent) {
			if err := wsHub.SendToUser(event.UserID, &ws.Message{
				Type: event.Type,
				Data: event.Payload,
			}); err != nil {
				log.Printf("Failed to push event to user %d: %v", event.UserID, err)
			}
		})
		if err != nil {
			log.Printf("Pubsub subscription ended: %v", err)
		}
	}()

	cronService := cron.NewService(reminderService, userRepo, courtesyRepo, emailSvc)
	cronService.Start()
	defer cronService.Stop()

	router := api.NewRouter(
		authHandler,
		userHandler,
		patientHandler,
		agendaHandler,
		blockHandler,
		billingHandler,
		websocketHandler,
		entitlementService,
		cfg,
	)
	engine := router.Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

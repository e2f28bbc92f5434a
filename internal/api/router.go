package api

import (
	"github.com/gin-gonic/gin"

	"github.com/agendahof/agendahof-server/config"
	"github.com/agendahof/agendahof-server/internal/api/handler"
	"github.com/agendahof/agendahof-server/internal/api/middleware"
	"github.com/agendahof/agendahof-server/internal/service"
)

type Router struct {
	authHandler        *handler.AuthHandler
	userHandler        *handler.UserHandler
	patientHandler     *handler.PatientHandler
	agendaHandler      *handler.AgendaHandler
	blockHandler       *handler.BlockHandler
	billingHandler     *handler.BillingHandler
	websocketHandler   *handler.WebSocketHandler
	entitlementService *service.EntitlementService
	cfg                *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	patientHandler *handler.PatientHandler,
	agendaHandler *handler.AgendaHandler,
	blockHandler *handler.BlockHandler,
	billingHandler *handler.BillingHandler,
	websocketHandler *handler.WebSocketHandler,
	entitlementService *service.EntitlementService,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:        authHandler,
		userHandler:        userHandler,
		patientHandler:     patientHandler,
		agendaHandler:      agendaHandler,
		blockHandler:       blockHandler,
		billingHandler:     billingHandler,
		websocketHandler:   websocketHandler,
		entitlementService: entitlementService,
		cfg:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// public - auth
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/verify-email", r.authHandler.VerifyEmail)
			auth.GET("/google", r.authHandler.GoogleAuth)
			auth.GET("/google/callback", r.authHandler.GoogleCallback)
		}

		// public - plan catalog and billing webhook
		api.GET("/plans", r.billingHandler.Plans)
		api.POST("/billing/webhook", r.billingHandler.Webhook)

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// user
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.POST("/avatar", r.userHandler.UploadAvatar)
			}

			// billing
			billing := authenticated.Group("/billing")
			{
				billing.GET("/entitlement", r.billingHandler.Entitlement)
				billing.POST("/checkout", r.billingHandler.Checkout)
			}

			// agenda reads stay open after the trial lapses
			authenticated.GET("/agenda/day", r.agendaHandler.Day)
			authenticated.GET("/agenda/week", r.agendaHandler.Week)
			authenticated.GET("/appointments/:id", r.agendaHandler.GetAppointment)
			authenticated.GET("/patients", r.patientHandler.List)
			authenticated.GET("/patients/:id", r.patientHandler.Get)
			authenticated.GET("/patients/:id/history", r.patientHandler.History)
			authenticated.GET("/blocks", r.blockHandler.List)

			// writes require an active trial, subscription or courtesy grant
			active := authenticated.Group("")
			active.Use(middleware.RequireActiveAccess(r.entitlementService))
			{
				active.POST("/appointments", r.agendaHandler.CreateAppointment)
				active.PUT("/appointments/:id", r.agendaHandler.UpdateAppointment)
				active.DELETE("/appointments/:id", r.agendaHandler.DeleteAppointment)

				active.POST("/commitments", r.agendaHandler.CreateCommitment)
				active.DELETE("/commitments/:id", r.agendaHandler.DeleteCommitment)

				active.POST("/blocks", r.blockHandler.Create)
				active.PUT("/blocks/:id", r.blockHandler.Update)
				active.DELETE("/blocks/:id", r.blockHandler.Delete)

				active.POST("/patients", r.patientHandler.Create)
				active.PUT("/patients/:id", r.patientHandler.Update)
				active.DELETE("/patients/:id", r.patientHandler.Delete)
				active.POST("/patients/:id/photo", r.patientHandler.UploadPhoto)
				active.POST("/patients/import", r.patientHandler.Import)
			}
		}
	}

	return engine
}

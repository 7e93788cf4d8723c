package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/nail-scheduler/internal/audit"
	"github.com/BruksfildServices01/nail-scheduler/internal/config"
	"github.com/BruksfildServices01/nail-scheduler/internal/handlers"
	infraRepo "github.com/BruksfildServices01/nail-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/nail-scheduler/internal/media"
	"github.com/BruksfildServices01/nail-scheduler/internal/middleware"
	ucEvent "github.com/BruksfildServices01/nail-scheduler/internal/usecase/event"
	ucProfile "github.com/BruksfildServices01/nail-scheduler/internal/usecase/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/visits"
	"github.com/BruksfildServices01/nail-scheduler/internal/web"
)

// Deps are the long-lived collaborators the routes are built from.
type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Logger  *slog.Logger
	Audit   audit.Recorder
	Visits  visits.Counter
	Storage media.Storage

	// LoginLimiter throttles POST /accounts/login; nil disables it.
	LoginLimiter *middleware.RateLimiter
}

// NewEngine builds a gin engine with templates, global middleware and every
// route registered.
func NewEngine(deps Deps) (*gin.Engine, error) {
	tpl, err := web.Templates(deps.Config.Timezone)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	// X-Forwarded-For is only honoured from these; nil trusts no proxy
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(tpl)

	RegisterRoutes(r, deps)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	db, cfg := deps.DB, deps.Config

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middleware.Session(cfg))
	r.Use(middleware.CSRFToken())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	profileRepo := infraRepo.NewProfileGormRepository(db)
	eventRepo := infraRepo.NewEventGormRepository(db)
	catalogueRepo := infraRepo.NewCatalogueGormRepository(db)

	// ======================================================
	// USE CASES: PROFILES
	// ======================================================
	listMastersUC := ucProfile.NewListMasters(profileRepo)
	getMasterUC := ucProfile.NewGetMasterProfile(profileRepo, eventRepo)
	createMasterUC := ucProfile.NewCreateMaster(profileRepo, deps.Audit)
	updateMasterUC := ucProfile.NewUpdateMaster(profileRepo, deps.Storage, deps.Audit)
	deleteMasterUC := ucProfile.NewDeleteMaster(profileRepo, deps.Audit)

	listCustomersUC := ucProfile.NewListCustomers(profileRepo)
	getCustomerUC := ucProfile.NewGetCustomerProfile(profileRepo)
	createCustomerUC := ucProfile.NewCreateCustomer(profileRepo, deps.Audit)
	updateCustomerUC := ucProfile.NewUpdateCustomer(profileRepo, deps.Audit)
	deleteCustomerUC := ucProfile.NewDeleteCustomer(profileRepo, deps.Audit)

	// ======================================================
	// USE CASES: EVENTS
	// ======================================================
	createEventUC := ucEvent.NewCreateEvent(eventRepo, deps.Audit, cfg.Timezone)
	updateEventUC := ucEvent.NewUpdateEvent(eventRepo, deps.Audit, cfg.Timezone)
	removeEventUC := ucEvent.NewRemoveEvent(eventRepo, deps.Audit)
	getEventUC := ucEvent.NewGetOwnedEvent(eventRepo)
	listEventsUC := ucEvent.NewListEvents(eventRepo, cfg.Timezone)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(profileRepo)
	dashboardHandler := handlers.NewDashboardHandler(catalogueRepo, deps.Visits)
	healthHandler := handlers.NewHealthHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	masterHandler := handlers.NewMasterHandler(
		catalogueRepo,
		listMastersUC,
		getMasterUC,
		createMasterUC,
		updateMasterUC,
		deleteMasterUC,
		listEventsUC,
	)

	customerHandler := handlers.NewCustomerHandler(
		catalogueRepo,
		listCustomersUC,
		getCustomerUC,
		createCustomerUC,
		updateCustomerUC,
		deleteCustomerUC,
	)

	eventHandler := handlers.NewEventHandler(
		createEventUC,
		updateEventUC,
		removeEventUC,
		getEventUC,
		listEventsUC,
		cfg.Timezone,
	)

	serviceHandler := handlers.NewServiceHandler(catalogueRepo, deps.Audit)
	priceHandler := handlers.NewPriceHandler(catalogueRepo, profileRepo, deps.Audit)

	loginRequired := middleware.LoginRequired()
	masterRequired := middleware.MasterRequired()

	// ======================================================
	// PUBLIC
	// ======================================================
	r.GET("/health", healthHandler.Health)
	r.GET("/denied", handlers.Denied)
	r.NoRoute(handlers.NotFound)

	if local, ok := deps.Storage.(*media.LocalStorage); ok {
		r.Static(local.URLPrefix, local.Dir)
	}

	accounts := r.Group("/accounts")
	{
		accounts.GET("/login", authHandler.LoginPage)
		if deps.LoginLimiter != nil {
			accounts.POST("/login", middleware.RateLimit(deps.LoginLimiter), authHandler.Login)
		} else {
			accounts.POST("/login", authHandler.Login)
		}
		accounts.POST("/logout", authHandler.Logout)
	}

	// ======================================================
	// DASHBOARD
	// ======================================================
	r.GET("/", loginRequired, dashboardHandler.Index)
	r.GET("/me", loginRequired, meHandler.GetMe)
	r.GET("/audit-logs", loginRequired, auditLogsHandler.List)

	// ======================================================
	// MASTERS
	// ======================================================
	masters := r.Group("/masters")
	{
		masters.GET("", loginRequired, masterHandler.List)
		masters.GET("/new", masterHandler.NewForm)
		masters.POST("/new", masterHandler.Create)
		masters.GET("/:id", loginRequired, masterHandler.Detail)
		masters.GET("/:id/events", loginRequired, masterHandler.Events)

		masters.GET("/:id/update", loginRequired, masterHandler.EditForm)
		masters.POST("/:id/update", loginRequired, masterHandler.Update)
		masters.GET("/:id/delete", loginRequired, masterHandler.DeleteConfirm)
		masters.POST("/:id/delete", loginRequired, masterHandler.Delete)

		masters.POST("/:id/prices", masterRequired, priceHandler.Create)
	}

	// ======================================================
	// CUSTOMERS
	// ======================================================
	customers := r.Group("/customers")
	{
		customers.GET("", loginRequired, customerHandler.List)
		customers.GET("/new", customerHandler.NewForm)
		customers.POST("/new", customerHandler.Create)
		customers.GET("/:id", loginRequired, customerHandler.Detail)

		customers.GET("/:id/update", loginRequired, customerHandler.EditForm)
		customers.POST("/:id/update", loginRequired, customerHandler.Update)
		customers.GET("/:id/delete", loginRequired, customerHandler.DeleteConfirm)
		customers.POST("/:id/delete", loginRequired, customerHandler.Delete)
	}

	// ======================================================
	// EVENTS
	// ======================================================
	events := r.Group("/events")
	{
		events.GET("", loginRequired, eventHandler.List)
		events.POST("", masterRequired, eventHandler.Create)
		events.GET("/:id/update", masterRequired, eventHandler.EditForm)
		events.POST("/:id/update", masterRequired, eventHandler.Update)
		events.POST("/:id/delete", masterRequired, eventHandler.Delete)
	}

	// ======================================================
	// SERVICES & PRICES
	// ======================================================
	services := r.Group("/services")
	{
		services.GET("", loginRequired, serviceHandler.List)
		services.GET("/new", masterRequired, serviceHandler.NewForm)
		services.POST("/new", masterRequired, serviceHandler.Create)
		services.GET("/:id/update", masterRequired, serviceHandler.EditForm)
		services.POST("/:id/update", masterRequired, serviceHandler.Update)
		services.GET("/:id/delete", masterRequired, serviceHandler.DeleteConfirm)
		services.POST("/:id/delete", masterRequired, serviceHandler.Delete)
	}

	prices := r.Group("/prices", masterRequired)
	{
		prices.GET("/:id/update", priceHandler.EditForm)
		prices.POST("/:id/update", priceHandler.Update)
		prices.POST("/:id/delete", priceHandler.Delete)
	}
}

package app

import (
	"clinicdesk/config"
	"clinicdesk/internal/database"
	"clinicdesk/internal/events"
	"clinicdesk/internal/handlers/middleware"
	"clinicdesk/internal/logger"
	"clinicdesk/internal/repositories"
	"clinicdesk/internal/services"
	"clinicdesk/internal/utils"
	"clinicdesk/internal/websockets"

	sessionController "clinicdesk/internal/controllers/session"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config

	// Services
	TransactionService           *services.TransactionService
	EmailDeliveryService         *services.EmailDeliveryService
	ReadinessNotificationService *services.ReadinessNotificationService

	// Repositories
	SetupRepo       repositories.SetupRepository
	EmailConfigRepo repositories.EmailConfigRepository

	// Controllers
	SessionController *sessionController.SessionController
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	app, err := build(db, config)
	if err != nil {
		_ = db.Close()
		return &App{}, err
	}

	return app, nil
}

func build(db database.DB, config config.Config) (*App, error) {
	log := logger.New("app").Function("build")

	var secrets *utils.SecretBox
	if config.EmailKeySecret != "" {
		box, err := utils.NewSecretBox(config.EmailKeySecret)
		if err != nil {
			return &App{}, log.Err("failed to create secret box", err)
		}
		secrets = box
	} else {
		log.Warn("EMAIL_KEY_SECRET is not set, provider api keys are stored unsealed")
	}

	eventBus := events.New(db.Cache.Events, config)

	// Initialize services
	transactionService := services.NewTransactionService(db)
	emailDeliveryService := services.NewEmailDeliveryService(config)
	readinessNotificationService := services.NewReadinessNotificationService(eventBus)

	// Initialize repositories
	setupRepo := repositories.NewSetup(db)
	emailConfigRepo := repositories.NewEmailConfig(db, secrets)

	// Initialize controllers with repositories and services
	middleware := middleware.New(config)
	sessionController := sessionController.New(
		setupRepo,
		readinessNotificationService,
		emailConfigRepo,
		emailDeliveryService,
		config.ReadinessDebounce(),
	)

	websocket, err := websockets.New(eventBus, sessionController)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	app := &App{
		Database:                     db,
		Config:                       config,
		Middleware:                   middleware,
		TransactionService:           transactionService,
		EmailDeliveryService:         emailDeliveryService,
		ReadinessNotificationService: readinessNotificationService,
		SetupRepo:                    setupRepo,
		EmailConfigRepo:              emailConfigRepo,
		SessionController:            sessionController,
		Websocket:                    websocket,
		EventBus:                     eventBus,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := map[string]bool{
		"websocket":                    a.Websocket == nil,
		"eventBus":                     a.EventBus == nil,
		"transactionService":           a.TransactionService == nil,
		"emailDeliveryService":         a.EmailDeliveryService == nil,
		"readinessNotificationService": a.ReadinessNotificationService == nil,
		"sessionController":            a.SessionController == nil,
		"setupRepo":                    a.SetupRepo == nil,
		"emailConfigRepo":              a.EmailConfigRepo == nil,
	}

	for name, isNil := range nilChecks {
		if isNil {
			return log.Error("nil check failed", "component", name)
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}

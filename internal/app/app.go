// Package app wires configuration, storage, the timetable core and the HTTP
// API into one value shared by the binaries.
package app

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"schooltimetable/internal/config"
	"schooltimetable/internal/database"
	"schooltimetable/internal/handlers"
	"schooltimetable/internal/repository"
	"schooltimetable/internal/security"
	"schooltimetable/internal/service"
	"schooltimetable/internal/timetable"
	"schooltimetable/internal/validation"
)

type App struct {
	School   *config.School
	DB       *database.DB
	Store    *service.PersistentStore
	Slots    *timetable.SlotStore
	Resolver *timetable.Resolver
	Engine   *validation.Engine
	Backup   *service.BackupService
	Tokens   *security.EditorTokens

	ruleSettings *repository.RuleSettingsRepository
	limiter      *security.RateLimiter
	cfg          *config.Config
}

// New opens the database, runs migrations, loads the stored timetable and
// rule settings and builds the core components
func New(cfg *config.Config) (*App, error) {
	school, err := loadSchool(cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := service.NewPersistentStore(repository.NewTimetableRepository(db), cfg.Debug)
	if err := store.Load(); err != nil {
		db.Close()
		return nil, err
	}

	slots := timetable.NewSlotStore(school, store)
	resolver := timetable.NewResolver(school, slots)
	resolver.Transitive = cfg.TransitiveTeamTeaching

	engine := validation.NewEngine(validation.Env{School: school, Slots: slots, Resolver: resolver}, validation.DefaultRules()...)
	ruleSettings := repository.NewRuleSettingsRepository(db)
	settings, err := ruleSettings.GetAll()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load rule settings: %w", err)
	}
	engine.ApplySettings(settings)

	if cfg.Debug {
		log.Printf("[DEBUG] School %q: %d classes, %d days, %d periods", school.Name, len(school.Classes), len(school.Days), school.Periods)
		log.Printf("[DEBUG] Applied %d stored rule settings, transitive team teaching: %t", len(settings), resolver.Transitive)
	}

	return &App{
		School:       school,
		DB:           db,
		Store:        store,
		Slots:        slots,
		Resolver:     resolver,
		Engine:       engine,
		Backup:       service.NewBackupService(store, school),
		Tokens:       security.NewEditorTokens(cfg.EditorTokenSecret),
		ruleSettings: ruleSettings,
		cfg:          cfg,
	}, nil
}

// Handler builds the HTTP API with logging, rate limiting and editor checks
func (a *App) Handler() http.Handler {
	if a.limiter == nil {
		a.limiter = security.NewRateLimiter(a.cfg.RateLimitRequests, a.cfg.RateLimitWindow)
		a.limiter.TrustProxy = a.cfg.TrustProxy
	}
	if !a.Tokens.Enabled() {
		log.Println("Warning: EDITOR_TOKEN_SECRET not set, timetable edits are not authenticated")
	}

	mu := &sync.Mutex{}
	middleware := handlers.NewMiddleware(a.Tokens, a.limiter, a.cfg.Debug)
	timetableHandler := handlers.NewTimetableHandler(mu, a.Slots, a.Resolver)
	validationHandler := handlers.NewValidationHandler(mu, a.Engine, a.ruleSettings)

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, middleware, timetableHandler, validationHandler)
	return handlers.Logging(mux)
}

// Close releases the database and stops background work
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	return a.DB.Close()
}

func loadSchool(cfg *config.Config) (*config.School, error) {
	if cfg.SchoolConfigPath == "" {
		log.Println("SCHOOL_CONFIG_PATH not set, using the built-in sample school")
		return config.DefaultSchool(), nil
	}
	school, err := config.LoadSchool(cfg.SchoolConfigPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded school config from %s", cfg.SchoolConfigPath)
	return school, nil
}

package app

import (
	"freelance-marketplace/config"
	"freelance-marketplace/internal/realtime"
	"freelance-marketplace/internal/services"
	"freelance-marketplace/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Services groups the domain services shared by all handlers.
type Services struct {
	Users     services.UserService
	Jobs      services.JobService
	Proposals services.ProposalService
	Escrow    services.EscrowService
	Reviews   services.ReviewService
	Messages  services.MessageService
	Contacts  services.ContactService
	Admin     services.AdminService
}

// Application holds core application dependencies.
type Application struct {
	Config      *config.Config
	Store       storage.Store
	DBPool      *pgxpool.Pool // nil with the memory driver
	RedisClient *redis.Client // nil with the memory driver
	Validator   *validator.Validate
	Services    Services
	Streamer    *realtime.Streamer // nil when push is disabled
}

// Deps are the backends chosen by main for the configured storage driver.
type Deps struct {
	Store       storage.Store
	Sessions    services.SessionStore
	Broker      realtime.Broker
	DBPool      *pgxpool.Pool
	RedisClient *redis.Client
}

// New builds the service graph on top of the given backends.
func New(cfg *config.Config, deps Deps) *Application {
	rules := services.DefaultRules()
	rules.FeePercent = cfg.Escrow.FeePercent
	rules.RepostDays = cfg.Escrow.RepostDays

	var notifier services.Notifier
	var streamer *realtime.Streamer
	if cfg.Messaging.PushEnabled && deps.Broker != nil {
		notifier = deps.Broker
		streamer = realtime.NewStreamer(deps.Broker, cfg.CORS.AllowedOrigins)
	}

	tokens := services.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	}

	return &Application{
		Config:      cfg,
		Store:       deps.Store,
		DBPool:      deps.DBPool,
		RedisClient: deps.RedisClient,
		Validator:   validator.New(),
		Services: Services{
			Users:     services.NewUserService(deps.Store, deps.Sessions, tokens),
			Jobs:      services.NewJobService(deps.Store, rules),
			Proposals: services.NewProposalService(deps.Store),
			Escrow:    services.NewEscrowService(deps.Store, rules),
			Reviews:   services.NewReviewService(deps.Store),
			Messages:  services.NewMessageService(deps.Store, notifier, cfg.Messaging.PageSize),
			Contacts:  services.NewContactService(deps.Store),
			Admin:     services.NewAdminService(deps.Store, rules),
		},
		Streamer: streamer,
	}
}

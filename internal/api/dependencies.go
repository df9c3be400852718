package api

import (
	"os"

	"notionflow/server/internal/common"
	"notionflow/server/internal/db"
	"notionflow/server/internal/db/repositories"
	"notionflow/server/internal/metrics"
	"notionflow/server/internal/services"

	"github.com/redis/go-redis/v9"
)

type Repositories struct {
	User              repositories.UserRepository
	Keys              repositories.KeysRepo
	Connections       repositories.ConnectionRepository
	Calendars         *repositories.CalendarRepo
	Events            *repositories.EventRepo
	Fingerprints      *repositories.FingerprintRepo
	ValidationHistory *repositories.ValidationHistoryRepo
	SyncHistory       *repositories.SyncHistoryRepo
}

type Services struct {
	Cache        *common.CacheService
	Redis        *redis.Client
	Session      *common.SessionService
	URLSigner    *common.URLSignerService
	RedisQueue   *common.RedisQueueService
	VisitTracker *common.VisitTracker
	User         *services.UserService
	Validation   *services.EventValidationService
	Sync         *services.CalendarSyncService
	Export       *services.ExportService
	Metrics      *metrics.MetricsRegistry
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
}

func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {

	repos := &Repositories{
		User:              *repositories.NewUserRepository(db.DB),
		Keys:              *repositories.NewApiKeysRepo(db.DB),
		Connections:       *repositories.NewConnectionRepository(db.DB),
		Calendars:         repositories.NewCalendarRepo(db.PgDB),
		Events:            repositories.NewEventRepo(db.PgDB),
		Fingerprints:      repositories.NewFingerprintRepo(db.PgDB),
		ValidationHistory: repositories.NewValidationHistoryRepo(db.PgDB),
		SyncHistory:       repositories.NewSyncHistoryRepo(db.PgDB),
	}

	cacheSvc := common.NewCacheService(300, 600)
	redisClient := common.NewRedisClient()

	signingSecret := os.Getenv("EXPORT_SIGNING_SECRET")
	if signingSecret == "" {
		signingSecret = "dev-secret-change-me"
	}

	validationSvc := services.NewEventValidationService(
		repos.Events,
		repos.Fingerprints,
		repos.ValidationHistory,
	)

	userSvc := services.NewUserService(&repos.User, &repos.Connections, cacheSvc)

	syncSvc := services.NewCalendarSyncService(
		&repos.Connections,
		repos.Calendars,
		repos.Events,
		repos.SyncHistory,
		validationSvc,
		cacheSvc,
		nil, // default provider factory
	)

	signer := common.NewURLSignerService([]byte(signingSecret), redisClient)

	exportSvc := services.NewExportService(
		repos.Calendars,
		repos.Events,
		repos.SyncHistory,
		signer,
	)

	svcs := &Services{
		Cache:        cacheSvc,
		Redis:        redisClient,
		Session:      common.NewSessionService(redisClient),
		URLSigner:    signer,
		RedisQueue:   common.NewRedisQueueService(redisClient),
		VisitTracker: common.NewVisitTracker(redisClient),
		User:         userSvc,
		Validation:   validationSvc,
		Sync:         syncSvc,
		Export:       exportSvc,
		Metrics:      metricsReg,
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
	}, nil
}

package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quiz-reward-service/internal/app"
	"quiz-reward-service/internal/config"
	"quiz-reward-service/internal/infra/memory"
	"quiz-reward-service/internal/infra/postgres"
	redisinfra "quiz-reward-service/internal/infra/redis"
	"quiz-reward-service/internal/logging"
	"quiz-reward-service/internal/metrics"
	transport "quiz-reward-service/internal/transport/http"
)

// runtime is the wired service graph shared by the server and the admin commands.
type runtime struct {
	services transport.Services
	metrics  *metrics.Metrics
	close    func()
}

func loadConfig(path string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

// buildRuntime picks Postgres stores when postgres.url is set and the in-memory ones
// (seeded with sample data) otherwise. Redis, when configured, backs the question
// bank cache and the per-entity locks.
func buildRuntime(ctx context.Context, cfg config.Config, logger *zap.Logger) (*runtime, error) {
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			if redisClient != nil {
				_ = redisClient.Close()
			}
			return nil, err
		}
	}

	var (
		loader       memory.SurveyLoader
		scores       app.ScoreLedger
		responses    app.ResponseStore
		progress     app.ProgressStore
		badges       app.BadgeStore
		certificates app.CertificateStore
		catalog      interface {
			app.CourseCatalog
			app.SyllabusRepository
			app.GroupDirectory
			app.IdentityResolver
		}
	)
	if pool != nil {
		loader = postgres.NewSurveyLoader(pool)
		scores = postgres.NewScoreLedger(pool)
		responses = postgres.NewResponseStore(pool)
		progress = postgres.NewProgressStore(pool)
		badges = postgres.NewBadgeStore(pool)
		certificates = postgres.NewCertificateStore(pool)
		catalog = postgres.NewCatalog(pool)
	} else {
		logger.Warn("postgres not configured, using in-memory stores with sample data")
		mem := memory.NewCatalog()
		seedMemoryCatalog(mem)
		loader = memory.NewStaticSurveyLoader(sampleSurveys())
		scores = memory.NewScoreLedger()
		responses = memory.NewResponseStore()
		progress = memory.NewProgressStore()
		badges = memory.NewBadgeStore()
		certificates = memory.NewCertificateStore()
		catalog = mem
	}

	surveyTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	lockTTL := config.TTLDuration(cfg.Locks.TTL, 10*time.Second)
	var (
		bank   app.QuestionBank
		locker app.Locker
	)
	if redisClient != nil {
		// redis.ttl overrides quiz.ttl for the shared cache.
		bank = redisinfra.NewSurveyRepository(redisClient, loader, config.TTLDuration(cfg.Redis.TTL, surveyTTL))
		locker = redisinfra.NewLocker(redisClient, lockTTL)
	} else {
		bank = memory.NewSurveyRepository(loader, surveyTTL)
		locker = memory.NewLocker()
	}

	m := metrics.New()
	tel := app.Telemetry{Logger: logger, Metrics: m}
	badgeService := app.NewBadgeService(badges, catalog, catalog, locker, tel)

	return &runtime{
		services: transport.Services{
			Quiz:         app.NewQuizService(bank, scores, responses, badgeService, tel),
			Progress:     app.NewProgressService(progress, locker, tel),
			Leaderboards: app.NewLeaderboardService(scores, progress, catalog, catalog, catalog, cfg.LeaderboardLimit()),
			Badges:       badgeService,
			Certificates: app.NewCertificateService(app.CertificateDeps{
				Syllabi:      catalog,
				Catalog:      catalog,
				Bank:         bank,
				Progress:     progress,
				Scores:       scores,
				Certificates: certificates,
				Identities:   catalog,
				Locker:       locker,
			}, tel),
		},
		metrics: m,
		close: func() {
			if pool != nil {
				pool.Close()
			}
			if redisClient != nil {
				_ = redisClient.Close()
			}
		},
	}, nil
}

package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-reward-service/internal/app"
	"quiz-reward-service/internal/domain"
	"quiz-reward-service/internal/infra/memory"
	"quiz-reward-service/internal/infra/postgres"
	pgmigrations "quiz-reward-service/internal/infra/postgres/migrations"
	infraredis "quiz-reward-service/internal/infra/redis"
	"quiz-reward-service/internal/reward"
)

func TestRewardsEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	seedCatalog(t, ctx, pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	catalog := postgres.NewCatalog(pool)
	scores := postgres.NewScoreLedger(pool)
	progressStore := postgres.NewProgressStore(pool)
	bank := infraredis.NewSurveyRepository(redisClient, postgres.NewSurveyLoader(pool), 5*time.Minute)
	locker := infraredis.NewLocker(redisClient, 5*time.Second)
	tel := app.Telemetry{}

	badges := app.NewBadgeService(postgres.NewBadgeStore(pool), catalog, catalog, locker, tel)
	quiz := app.NewQuizService(bank, scores, postgres.NewResponseStore(pool), badges, tel)
	progress := app.NewProgressService(progressStore, locker, tel)
	certificates := app.NewCertificateService(app.CertificateDeps{
		Syllabi:      catalog,
		Catalog:      catalog,
		Bank:         bank,
		Progress:     progressStore,
		Scores:       scores,
		Certificates: postgres.NewCertificateStore(pool),
		Identities:   catalog,
		Locker:       locker,
	}, tel)
	leaderboards := app.NewLeaderboardService(scores, progressStore, catalog, catalog, catalog, 10)

	pass := []domain.AnswerSubmission{{QuestionID: "q1", Answer: "4"}, {QuestionID: "q2", Answer: []any{"2", "7"}}}
	half := []domain.AnswerSubmission{{QuestionID: "q1", Answer: "4"}}

	first, err := quiz.Submit(ctx, "emp_1", "survey-1", half, 40)
	if err != nil || first.Passed || first.Percentage != 50 {
		t.Fatalf("expected failed half submission, got %+v %v", first, err)
	}
	for _, user := range []string{"emp_1", "guest-1"} {
		res, err := quiz.Submit(ctx, user, "survey-1", pass, 30)
		if err != nil || !res.Passed || res.Badge == nil || !res.Badge.IsNew {
			t.Fatalf("expected new badge for %s, got %+v %v", user, res, err)
		}
	}
	again, err := quiz.Submit(ctx, "emp_1", "survey-1", pass, 20)
	if err != nil || again.Badge == nil || again.Badge.Badge.AttemptCount != 2 || again.Badge.ScoreUpdated {
		t.Fatalf("expected badge attempt bump only, got %+v %v", again, err)
	}

	status, err := quiz.CheckAttempts(ctx, "emp_1", "survey-1")
	if err != nil || status.Remaining != 1 {
		t.Fatalf("expected one attempt left, got %+v %v", status, err)
	}

	for user, xp := range map[string]int{"emp_1": 80, "guest-1": 40} {
		if _, err := progress.Sync(ctx, user, domain.UserProgress{
			TotalXP:            xp,
			XPBySyllabus:       map[string]int{"syl-1": xp},
			FirstPassedQuizzes: []string{"survey-1"},
		}); err != nil {
			t.Fatalf("sync %s: %v", user, err)
		}
	}

	batch, err := certificates.Issue(ctx, "syl-1", "ops")
	if err != nil {
		t.Fatalf("issue certificates: %v", err)
	}
	if batch.TotalParticipants != 2 || batch.Certificates[0].UserID != "emp_1" || batch.Certificates[0].UserName != "Ana" {
		t.Fatalf("unexpected batch %+v", batch)
	}
	reissued, err := certificates.Issue(ctx, "syl-1", "ops")
	if err != nil || reissued.DeletedPrevious != 2 {
		t.Fatalf("expected previous batch replaced, got %+v %v", reissued, err)
	}
	if _, err := certificates.Certificate(ctx, batch.Certificates[0].ID); !errors.Is(err, domain.ErrCertificateNotFound) {
		t.Fatalf("expected old certificate gone, got %v", err)
	}
	mine, err := certificates.UserCertificates(ctx, "guest-1")
	if err != nil || len(mine) != 1 || mine[0].Rank != 2 || mine[0].CourseScores["course-1"].Score != 10 {
		t.Fatalf("unexpected guest certificates %+v %v", mine, err)
	}

	board, err := leaderboards.Survey(ctx, "survey-1", 10, "emp_1")
	if err != nil || len(board.Entries) != 2 || board.Entries[0].UserID != "emp_1" {
		t.Fatalf("unexpected survey board %+v %v", board, err)
	}
	xp, err := leaderboards.XP(ctx, "guest-1", "", 10)
	if err != nil || xp.Kind != domain.GroupsBoard || len(xp.Groups) != 1 {
		t.Fatalf("unexpected guest board %+v %v", xp, err)
	}
}

// Two services with their own in-process lockers stand in for two instances that
// share Postgres but no Redis.
func TestBadgeAttemptsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	seedCatalog(t, ctx, pool)

	catalog := postgres.NewCatalog(pool)
	instances := []*app.BadgeService{
		app.NewBadgeService(postgres.NewBadgeStore(pool), catalog, catalog, memory.NewLocker(), app.Telemetry{}),
		app.NewBadgeService(postgres.NewBadgeStore(pool), catalog, catalog, memory.NewLocker(), app.Telemetry{}),
	}
	award := reward.BadgeAward{UserID: "emp_1", CourseID: "course-1", SurveyID: "survey-1", Score: 10, MaxScore: 10, Percentage: 100}

	const perInstance = 10
	var (
		wg      sync.WaitGroup
		created atomic.Int32
	)
	for _, svc := range instances {
		for i := 0; i < perInstance; i++ {
			wg.Add(1)
			go func(svc *app.BadgeService) {
				defer wg.Done()
				issue, err := svc.IssueOrUpdate(ctx, award)
				if err != nil {
					t.Errorf("issue badge: %v", err)
					return
				}
				if issue.IsNew {
					created.Add(1)
				}
			}(svc)
		}
	}
	wg.Wait()

	badges, err := instances[0].UserBadges(ctx, "emp_1")
	if err != nil || len(badges) != 1 {
		t.Fatalf("expected one badge, got %+v %v", badges, err)
	}
	if badges[0].AttemptCount != 2*perInstance || created.Load() != 1 {
		t.Fatalf("expected %d attempts and one creation, got %d attempts and %d creations",
			2*perInstance, badges[0].AttemptCount, created.Load())
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func seedCatalog(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	loader := postgres.NewSurveyLoader(pool)
	err := loader.SaveSurvey(ctx, domain.Survey{
		ID:          "survey-1",
		MaxAttempts: 3,
		Questions: []domain.QuestionSpec{
			{ID: "q1", Type: domain.SingleChoice, CorrectAnswer: "B", Options: []string{"3", "4", "5"}},
			{ID: "q2", Type: domain.MultipleChoice, CorrectAnswer: `["A","C"]`, Options: []string{"2", "9", "7"}},
		},
	})
	if err != nil {
		t.Fatalf("seed survey: %v", err)
	}

	catalog := postgres.NewCatalog(pool)
	steps := []error{
		catalog.PutCourse(ctx, domain.Course{ID: "course-1", Title: "Arithmetic", Quiz: &domain.CourseQuiz{SurveyID: "survey-1"}}),
		catalog.PutSyllabus(ctx, domain.Syllabus{ID: "syl-1", Name: "Foundations", CourseSequence: []domain.CourseRef{{CourseID: "course-1", Order: 1}}}),
		catalog.PutGroup(ctx, domain.UserGroup{ID: "g1", Name: "Evening", MemberIDs: []string{"guest-1"}}),
		catalog.PutProfile(ctx, domain.Profile{UserID: "emp_1", Name: "Ana", Company: "Acme"}),
		catalog.PutProfile(ctx, domain.Profile{UserID: "guest-1", Name: "Bo"}),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("seed catalog: %v", err)
		}
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

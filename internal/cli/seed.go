package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-reward-service/internal/infra/postgres"
)

// NewSeedCmd loads the sample surveys and catalog into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample surveys, courses and profiles into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := runMigrationsWithConfig(cmd.Context(), cfg, logger); err != nil {
				return err
			}
			pool, err := pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := seedPostgres(cmd.Context(), pool); err != nil {
				return err
			}
			logger.Info("sample data loaded", zap.Int("surveys", len(sampleSurveys())))
			return nil
		},
	}
}

func seedPostgres(ctx context.Context, pool *pgxpool.Pool) error {
	loader := postgres.NewSurveyLoader(pool)
	for _, s := range sampleSurveys() {
		if err := loader.SaveSurvey(ctx, s); err != nil {
			return fmt.Errorf("seed survey %s: %w", s.ID, err)
		}
	}
	catalog := postgres.NewCatalog(pool)
	for _, c := range sampleCourses() {
		if err := catalog.PutCourse(ctx, c); err != nil {
			return err
		}
	}
	for _, s := range sampleSyllabi() {
		if err := catalog.PutSyllabus(ctx, s); err != nil {
			return err
		}
	}
	for _, g := range sampleGroups() {
		if err := catalog.PutGroup(ctx, g); err != nil {
			return err
		}
	}
	for _, p := range sampleProfiles() {
		if err := catalog.PutProfile(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

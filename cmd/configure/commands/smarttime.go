package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cepho/cepho-api/internal/config"
	"github.com/cepho/cepho-api/internal/database"
	"github.com/cepho/cepho-api/internal/models"
	"github.com/cepho/cepho-api/internal/review"
	"github.com/spf13/cobra"
)

// NewSmartTimeCmd creates the smarttime inspection command. It resolves a
// user's effective review time the same way the running server does, which
// makes it handy for debugging "why did the prompt fire at X" reports.
func NewSmartTimeCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "smarttime",
		Short: "Show a user's effective review time",
		Long:  "Resolve the smart review time for a user (by email) for today, showing which source won.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()

			ctx := context.Background()
			user, err := database.NewUserRepository(db).GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("get user: %w", err)
			}

			settingsRepo := database.NewSettingsRepository(db)
			patternRepo := database.NewPatternRepository(db)

			settings, err := settingsRepo.GetByUserID(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("get settings: %w", err)
			}
			setting := models.DefaultEveningReviewTime
			if settings != nil && settings.EveningReviewTime != "" {
				setting = settings.EveningReviewTime
			}

			patterns, err := patternRepo.GetByUserID(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("get patterns: %w", err)
			}
			predicted, err := patternRepo.GetPredictedTime(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("get predicted time: %w", err)
			}

			now := time.Now().In(settings.Location())
			resolved := review.ResolveSmartTime(setting, patterns, predicted, now.Weekday())

			fmt.Printf("Smart time for %s (%s, %s):\n", email, now.Weekday(), now.Format("2006-01-02"))
			fmt.Printf("  Effective time: %s\n", models.FormatClock(resolved.Hour, resolved.Minute))
			fmt.Printf("  Source: %s\n", resolved.Source)
			fmt.Printf("  Reason: %s\n", resolved.Reason)
			fmt.Printf("  Configured setting: %s\n", setting)
			if predicted != nil {
				fmt.Printf("  Predicted time: %s (%d samples)\n", predicted.PredictedTime, predicted.SampleCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email (required)")

	return cmd
}

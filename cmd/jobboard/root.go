package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/findajob/jobboard/internal/config"
	"github.com/findajob/jobboard/internal/logger"
	"github.com/findajob/jobboard/internal/services"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

// runtime holds what every command needs once the root pre-run has loaded it.
type runtime struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.Logger
}

var rt runtime

var rootCmd = &cobra.Command{
	Use:   "jobboard",
	Short: "Operator tooling for the FindAJob.ai job board",
	Long: `jobboard manages the job board database from the command line.
It migrates the schema, seeds the category taxonomy, creates accounts,
ingests raw listing text through the AI extraction flow and reports
applicant statistics for a listing.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		rt.cfg = config.Load()

		zlog, err := logger.New(rt.cfg.Server.LogJSON, rt.cfg.Server.LogDebug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		rt.log = zlog

		db, err := config.InitDatabase(rt.cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		rt.db = db
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rt.db != nil {
			if sqlDB, err := rt.db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		if rt.log != nil {
			rt.log.Sync()
		}
	},
}

// Execute runs the root command until it returns or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// newOracle builds the AI oracle from the loaded configuration.
func newOracle(ctx context.Context) (services.Oracle, error) {
	generator, err := services.NewGenerator(ctx, rt.cfg.AI.Provider, rt.cfg.AIKey(), rt.cfg.AIModel())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI provider: %w", err)
	}
	return services.NewOracle(generator, services.OracleConfig{
		Timeout:         rt.cfg.AI.Timeout,
		ExtractionModel: rt.cfg.AI.ExtractionModel,
		MaxLogLength:    rt.cfg.AI.MaxLogLength,
	}, rt.log), nil
}

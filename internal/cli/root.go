// Package cli implements the insightctl commands.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"social-insights-service/internal/config"
	"social-insights-service/internal/logger"
)

// NewRootCmd creates the insightctl root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "insightctl",
		Short: "Score posts and manage the social insights store",
		Long: `insightctl scores exported post records offline and runs the
maintenance tasks of the social-insights-service API.

Examples:
  # Score an export and print the summary with insights
  insightctl analyze posts.yaml

  # Apply database migrations
  insightctl migrate

  # Import posts from every configured video source
  insightctl sync`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config/config.yaml)")

	loadConfig := func() (*config.Config, *zap.Logger, error) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, nil, err
		}
		log, err := logger.New(cfg.Logger, cfg.Sentry)
		if err != nil {
			return nil, nil, err
		}

		return cfg, log.Logger, nil
	}

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newMigrateCmd(loadConfig))
	root.AddCommand(newSyncCmd(loadConfig))

	return root
}

type configLoader func() (*config.Config, *zap.Logger, error)

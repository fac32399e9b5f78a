// Package cli implements the vibecast CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcliao/vibecast/internal/app"
	"github.com/rcliao/vibecast/internal/config"
	"github.com/rcliao/vibecast/internal/logger"
	"github.com/rcliao/vibecast/internal/model"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	dbPath      string
	backendFlag string
	formatFlag  string
	dateFlag    string
	logFlag     string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "vibecast",
	Short: "Aura score and streak tracking for study podcasts",
	Long:  "Tracks the daily aura score, listening streak and episode mood reactions of a vibecast device.",

	// Errors are printed once by main after deferred cleanup has run.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $VIBECAST_CONFIG or ~/.vibecast/config.toml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (default: $VIBECAST_DB or ~/.vibecast/vibecast.db)")
	RootCmd.PersistentFlags().StringVarP(&backendFlag, "backend", "b", "", "Store backend: sqlite, redis or memory")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&dateFlag, "date", "", "Treat this yyyy-MM-dd as today")
	RootCmd.PersistentFlags().StringVar(&logFlag, "log", "", "Log mode: prod, debug, off (default warnings only)")
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if dbPath != "" {
		cfg.SQLite.Path = dbPath
	}
	if logFlag != "" {
		cfg.LogMode = logFlag
	}
	return cfg, cfg.Validate()
}

func openService() (*app.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}

	svc, err := app.Open(cfg, log)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}

	if dateFlag != "" {
		d, err := model.ParseDate(dateFlag)
		if err != nil {
			svc.Close()
			log.Sync()
			return nil, nil, err
		}
		loc, _ := cfg.Location()
		svc.SetClock(func() time.Time {
			now := time.Now().In(loc)
			return time.Date(d.Year(), d.Month(), d.Day(), now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), loc)
		})
	}

	return svc, func() {
		svc.Close()
		log.Sync()
	}, nil
}

func textOutput() bool { return formatFlag == "text" }

func printJSON(cmd *cobra.Command, v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

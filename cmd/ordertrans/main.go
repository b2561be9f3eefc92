package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"codeberg.org/snonux/ordertrans/internal/archive"
	"codeberg.org/snonux/ordertrans/internal/cli"
	"codeberg.org/snonux/ordertrans/internal/config"
	"codeberg.org/snonux/ordertrans/internal/journal"
	"codeberg.org/snonux/ordertrans/internal/models"
	"codeberg.org/snonux/ordertrans/internal/processor"
)

// errRunFailed signals a failed pipeline run whose summary was already printed.
var errRunFailed = errors.New("run failed")

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, flags *cli.Flags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := cli.NewLogger(flags.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cli.GetOpenAIKey())
		return lister.ListAvailableModels(ctx, os.Stdout, viper.GetString("translation.model"))
	}

	// Handle --history flag
	if flags.History > 0 {
		return showHistory(ctx, flags.History)
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	// Handle --show-config flag
	if flags.ShowConfig {
		return cfg.Encode(os.Stdout)
	}

	cutoff, err := flags.CutoffDate(time.Now())
	if err != nil {
		return err
	}

	book, closeBook, err := cli.OpenSpreadsheet(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeBook(); err != nil {
			logger.Warn("failed to close spreadsheet", zap.Error(err))
		}
	}()

	// Handle --archive flag
	if flags.Archive {
		title, err := archive.ArchiveSheet(ctx, book, cfg.App.TargetSheet, time.Now())
		if err != nil {
			return fmt.Errorf("failed to archive %s: %w", cfg.App.TargetSheet, err)
		}
		fmt.Printf("Destination sheet archived to: %s\n", title)
		return nil
	}

	deps := processor.Deps{
		Source: book,
		Logger: logger,
	}

	if !flags.DryRun {
		backend, err := cli.NewBackend(ctx, cfg, logger)
		if err != nil {
			return err
		}
		deps.Backend = backend
		fmt.Printf("Translating with %s\n", backend.Name())

		if cfg.Monitoring.EnableUsageTracking {
			j, err := journal.Open(cfg.Monitoring.JournalPath)
			if err != nil {
				logger.Warn("run journal unavailable", zap.String("path", cfg.Monitoring.JournalPath), zap.Error(err))
			} else {
				defer j.Close()
				deps.Journal = j
			}
		}
	}

	proc := processor.New(deps, cli.ProcessorOptions(cfg))

	fmt.Printf("Processing orders reviewed on or after %s\n", cutoff.Format("2006-01-02"))
	var res processor.Result
	if flags.DryRun {
		res = proc.DryRun(ctx, cutoff)
	} else {
		res = proc.Run(ctx, cutoff)
	}

	cli.PrintResult(os.Stdout, res)
	if !res.Success {
		return errRunFailed
	}
	return nil
}

func showHistory(ctx context.Context, n int) error {
	path := viper.GetString("monitoring.journal_path")
	if path == "" {
		path = config.DefaultJournalPath()
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Println("No runs recorded")
		return nil
	}

	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.Recent(ctx, n)
	if err != nil {
		return err
	}
	return cli.PrintHistory(os.Stdout, runs)
}

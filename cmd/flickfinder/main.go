package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"codeberg.org/snonux/flickfinder/internal/archive"
	"codeberg.org/snonux/flickfinder/internal/batch"
	"codeberg.org/snonux/flickfinder/internal/cli"
	"codeberg.org/snonux/flickfinder/internal/finder"
	"codeberg.org/snonux/flickfinder/internal/flickr"
	"codeberg.org/snonux/flickfinder/internal/gui"
	"codeberg.org/snonux/flickfinder/internal/metrics"
	"codeberg.org/snonux/flickfinder/internal/output"
)

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
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	settings := cli.LoadSettings()

	// Handle --archive flag
	if flags.Archive {
		archivePath, err := archive.ArchivePhotos(settings.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to archive photos: %w", err)
		}
		fmt.Printf("Photos directory archived to: %s\n", archivePath)
		return nil
	}

	req, interactive, err := cli.BuildRequest(cmd, args, flags)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	log, err := cli.NewLogger(settings.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if settings.MetricsAddr != "" {
		startMetrics(ctx, settings.MetricsAddr, log)
	}

	client, err := flickr.NewClient(settings.APIKey,
		flickr.WithBaseURL(settings.BaseURL),
		flickr.WithTimeout(settings.Timeout),
		flickr.WithMaxImageBytes(settings.MaxImageBytes),
		flickr.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("%w: set FLICKR_API_KEY or flickr.api_key in the config file", err)
	}

	f := finder.New(client, log)
	defer f.Close()

	if interactive {
		gui.New(f, log).Run()
		return nil
	}

	sink := output.NewFileSink(settings.OutputDir, os.Stdout, os.Stderr, log)

	// Handle batch processing
	if flags.BatchFile != "" {
		return runBatch(ctx, f, flags.BatchFile, sink, log)
	}

	out := f.Run(ctx, req, sink)
	if err := sink.Err(); err != nil {
		return err
	}
	if out.Kind == finder.Failed || out.Kind == finder.Cancelled {
		return out.Err
	}
	return nil
}

func runBatch(ctx context.Context, f *finder.Finder, filename string, sink *output.FileSink, log zerolog.Logger) error {
	requests, err := batch.ReadBatchFile(filename)
	if err != nil {
		return err
	}

	sum := batch.Process(ctx, f, requests, sink, log)
	fmt.Printf("\nDone! %d of %d searches found a photo (%d without results, %d failed, %d skipped)\n",
		sum.Succeeded, sum.Total(), sum.NoResults, sum.Failed, sum.Skipped)
	if sum.Failed > 0 || sum.Skipped > 0 {
		return fmt.Errorf("%d searches did not complete", sum.Failed+sum.Skipped)
	}
	return nil
}

// startMetrics serves the Prometheus registry until ctx is done
func startMetrics(ctx context.Context, addr string, log zerolog.Logger) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		log.Error().Err(err).Msg("cannot register metrics")
		return
	}

	go func() {
		if err := metrics.Serve(ctx, addr, reg, log); err != nil {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
}

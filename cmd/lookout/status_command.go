package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lookout/internal/api"
	"lookout/internal/config"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, statusErr := client.Status(cmd.Context())

			if jsonOut {
				if statusErr != nil {
					return statusErr
				}
				return writeJSON(cmd, status)
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			printSectionHeader(stdout, "Daemon", colorize)
			if statusErr != nil {
				fmt.Fprintln(stdout, renderStatusLine("Daemon", statusError, "not running", colorize))
				fmt.Fprintln(stdout, renderStatusLine("Bind", statusInfo, cfg.Daemon.Bind, colorize))
				fmt.Fprintln(stdout)
				printOfflineSections(stdout, cfg, colorize)
				return nil
			}

			fmt.Fprintln(stdout, renderStatusLine("Daemon", statusOK, fmt.Sprintf("running (pid %d)", status.PID), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Listening", statusInfo, status.ListenAddr, colorize))
			fmt.Fprintln(stdout, renderStatusLine("Config", statusInfo, fmt.Sprintf("%s (version %d)", status.ConfigPath, status.ConfigVersion), colorize))
			if status.StartedAt != "" {
				fmt.Fprintln(stdout, renderStatusLine("Started", statusInfo, status.StartedAt, colorize))
			}
			fmt.Fprintln(stdout)

			printSectionHeader(stdout, "Enhancement", colorize)
			fmt.Fprintln(stdout, renderStatusLine("Pipeline", enhanceKind(status.Enhance.Enabled), enhanceDetail(status.Enhance), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Detector", detectorKind(status.DetectorConfigured), detectorDetail(status.DetectorConfigured), colorize))
			fmt.Fprintln(stdout, renderStatusLine("Notifier", statusOK, status.NotifierURL, colorize))
			fmt.Fprintln(stdout)

			printSectionHeader(stdout, "Providers", colorize)
			if len(status.Providers) == 0 {
				fmt.Fprintln(stdout, "No providers configured")
			} else {
				fmt.Fprintln(stdout, renderProviderTable(status.Providers, true))
			}
			fmt.Fprintln(stdout)

			printSectionHeader(stdout, "Notifications", colorize)
			fmt.Fprintln(stdout, renderStatusLine("Processed", statusInfo, statsDetail(status.Stats), colorize))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the raw status response as JSON")
	return cmd
}

// printOfflineSections renders what the local config promises when the
// daemon cannot be reached, so status stays useful before first start.
func printOfflineSections(w io.Writer, cfg *config.Config, colorize bool) {
	printSectionHeader(w, "Enhancement", colorize)
	enhance := api.EnhanceSettings{
		Enabled:                cfg.Enhance.Enabled,
		SnapshotMode:           cfg.Enhance.SnapshotMode,
		TimeoutSeconds:         cfg.Enhance.TimeoutSeconds,
		IncludeOriginalMessage: cfg.Enhance.IncludeOriginalMessage,
	}
	fmt.Fprintln(w, renderStatusLine("Pipeline", enhanceKind(enhance.Enabled), enhanceDetail(enhance), colorize))
	detectorConfigured := cfg.Detector.BaseURL != ""
	fmt.Fprintln(w, renderStatusLine("Detector", detectorKind(detectorConfigured), detectorDetail(detectorConfigured), colorize))
	notifierKind := statusOK
	notifierDetail := cfg.Notifier.URL
	if notifierDetail == "" {
		notifierKind = statusError
		notifierDetail = "not configured"
	}
	fmt.Fprintln(w, renderStatusLine("Notifier", notifierKind, notifierDetail, colorize))
	fmt.Fprintln(w)

	printSectionHeader(w, "Providers", colorize)
	if len(cfg.Providers) == 0 {
		fmt.Fprintln(w, "No providers configured")
		return
	}
	rows := make([]api.ProviderStatus, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		rows = append(rows, api.ProviderStatus{Name: p.Name, Model: p.Model})
	}
	fmt.Fprintln(w, renderProviderTable(rows, false))
}

func enhanceKind(enabled bool) statusKind {
	if enabled {
		return statusOK
	}
	return statusWarn
}

func enhanceDetail(settings api.EnhanceSettings) string {
	if !settings.Enabled {
		return "disabled"
	}
	return fmt.Sprintf("enabled (snapshot %s, timeout %ds, include original %s)",
		settings.SnapshotMode, settings.TimeoutSeconds, yesNo(settings.IncludeOriginalMessage))
}

func detectorKind(configured bool) statusKind {
	if configured {
		return statusOK
	}
	return statusInfo
}

func detectorDetail(configured bool) string {
	if configured {
		return "configured"
	}
	return "not configured (cropped snapshots only)"
}

func statsDetail(stats api.NotificationStats) string {
	return fmt.Sprintf("%d total (%d with snapshot, %d without)",
		stats.Total, stats.WithSnapshot, stats.WithoutSnapshot)
}

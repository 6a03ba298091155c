package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/riskibarqy/live-sports-hub/internal/app"
	"github.com/riskibarqy/live-sports-hub/internal/config"
	"github.com/riskibarqy/live-sports-hub/internal/platform/logging"
	"github.com/riskibarqy/live-sports-hub/internal/usecase"
)

const shutdownGrace = 5 * time.Second

func runExport(ctx context.Context, cfg config.Config, logger *logging.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "", "output file (default live_scores_<timestamp>.json)")
	sport := fs.String("sport", "", "sport to fetch (default: last watched)")
	league := fs.String("league", "", "league to fetch (default: all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.HTTPEnabled = false
	hub, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() { _ = hub.Close() }()

	session := hub.InitialSession(ctx)
	if strings.TrimSpace(*sport) != "" {
		session = usecase.Session{Sport: *sport, League: *league}.Normalize()
	}

	snapshot, err := hub.Poller().RunOnce(ctx, session)
	if err != nil {
		logger.Warn("live fetch failed; exporting fallback data", "error", err)
	}

	path := strings.TrimSpace(*out)
	if path == "" {
		path = fmt.Sprintf("live_scores_%s.json", time.Now().Format("20060102_150405"))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := usecase.ExportSnapshot(file, snapshot); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	fmt.Printf("exported %d events (%s, source=%s) to %s\n", len(snapshot.Events), snapshot.Sport, snapshot.Source, path)
	return nil
}

func runImport(ctx context.Context, cfg config.Config, logger *logging.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	in := fs.String("in", "", "snapshot file to import")
	filter := fs.String("q", "", "case-insensitive row filter")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*in) == "" {
		return fmt.Errorf("import requires -in")
	}

	file, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("open %s: %w", *in, err)
	}
	defer func() { _ = file.Close() }()

	snapshot, err := usecase.ImportSnapshot(file, time.Now)
	if err != nil {
		return err
	}

	cfg.HTTPEnabled = false
	hub, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() { _ = hub.Close() }()

	hub.Board().PublishSnapshot(ctx, snapshot)
	favorites, err := hub.Favorites().IDs(ctx)
	if err != nil {
		logger.Warn("load favorites failed", "error", err)
	}

	return writeRows(os.Stdout, hub.Board().Rows(favorites, *filter))
}

func writeRows(w io.Writer, rows []usecase.BoardRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FAV\tMATCH\tSCORE\tSTATUS\tPROGRESS\tLEAGUE")
	for _, row := range rows {
		fav := ""
		if row.Favorite {
			fav = "*"
		}
		fmt.Fprintf(tw, "%s\t%s vs %s\t%s\t%s\t%s\t%s\n",
			fav, row.HomeTeam, row.AwayTeam, row.Score, row.Status, row.Progress, row.League)
	}
	return tw.Flush()
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/ramonehamilton/bridge-scorer/internal/api"
	"github.com/ramonehamilton/bridge-scorer/internal/api/handlers"
	"github.com/ramonehamilton/bridge-scorer/internal/charts"
	"github.com/ramonehamilton/bridge-scorer/internal/export"
	"github.com/ramonehamilton/bridge-scorer/internal/recompute"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/engine"
)

func dirOf(path string) string {
	return filepath.Dir(path)
}

func (a *app) runScore(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	session := fs.Int("session", 0, "Score only this session (0 = all)")
	force := fs.Bool("force", false, "Rescore sessions whose inputs did not change")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *session > 0 {
		out, err := a.recomputer.RunSession(ctx, *session, *force)
		if err != nil {
			return err
		}
		if _, err := a.recomputer.RunCompetition(ctx); err != nil {
			return err
		}
		printOutcome(os.Stdout, *out)
		return nil
	}

	summary, err := a.recomputer.RunAll(ctx, *force)
	if err != nil {
		return err
	}
	fmt.Printf("Run %s\n", summary.RunID)
	for _, out := range summary.Sessions {
		printOutcome(os.Stdout, out)
	}

	stats := a.recomputer.Metrics().GetStats()
	fmt.Printf("Scored %d, skipped %d, failed %d\n", stats.SessionsScored, stats.SessionsSkipped, stats.Failures)
	return nil
}

func printOutcome(w io.Writer, out recompute.SessionOutcome) {
	if out.Skipped {
		fmt.Fprintf(w, "Session %d: unchanged (%s)\n", out.Session, out.Fingerprint)
		return
	}
	res := out.Results
	fmt.Fprintf(w, "Session %d: %d pairs ranked in %s\n", out.Session, res.Rank.Ranked(), out.Duration.Round(time.Microsecond))
	for _, d := range res.Diagnostics {
		fmt.Fprintf(w, "  correction: %s\n", d)
	}
	for _, b := range res.BadData {
		fmt.Fprintf(w, "  bad data: board %d pair %d-%d: %s\n", b.Game, b.PairNS, b.PairEW, b.Reason)
	}
}

func (a *app) pairNames(ctx context.Context) (export.Names, error) {
	pairs, err := a.store.Pairs(ctx)
	if err != nil {
		return nil, err
	}
	names := make(export.Names, len(pairs))
	for _, p := range pairs {
		names[p.ID] = p.Name
	}
	return names, nil
}

func (a *app) clubNames(ctx context.Context) (export.Names, error) {
	list, err := a.store.Clubs(ctx)
	if err != nil {
		return nil, err
	}
	names := make(export.Names, len(list))
	for _, c := range list {
		names[c.ID] = c.Name
	}
	return names, nil
}

func (a *app) runTotals(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("totals", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := a.recomputer.RunAll(ctx, false); err != nil {
		return err
	}
	res := a.recomputer.Latest()
	names, err := a.pairNames(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Pos\tRank\tPair\tName\tSessions\tAbsent\tTotal\tBonus\tFinal\tAverage")
	for _, row := range export.Totals(res, names) {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			row.Position, row.Rank, row.Pair, row.Name, row.Sessions, row.Absent,
			row.Total, row.Bonus, row.Final, row.Average)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, d := range res.Diagnostics {
		fmt.Printf("end correction: %s\n", d)
	}
	return nil
}

// sessionResults scores one session, reusing unchanged stored results.
func (a *app) sessionResults(ctx context.Context, session int) (*engine.SessionResults, error) {
	if session < 1 {
		return nil, errors.New("-session is required")
	}
	out, err := a.recomputer.RunSession(ctx, session, false)
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (a *app) runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	what := fs.String("what", "totals", "standings, frequencies, totals or clubs")
	session := fs.Int("session", 0, "Session for standings and frequencies")
	formatName := fs.String("format", "csv", "csv or json")
	out := fs.String("out", "", "Output file (default: generated name in the current directory)")
	overwrite := fs.Bool("overwrite", false, "Replace an existing output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return err
	}

	var data interface{}
	name := *what
	switch *what {
	case "standings", "frequencies":
		res, err := a.sessionResults(ctx, *session)
		if err != nil {
			return err
		}
		name = fmt.Sprintf("session_%d_%s", *session, *what)
		if *what == "standings" {
			names, err := a.pairNames(ctx)
			if err != nil {
				return err
			}
			data = export.SessionStandings(res, names)
		} else if res.Butler != nil {
			data = export.Datums(res)
		} else {
			data = export.Frequencies(res)
		}
	case "totals", "clubs":
		if _, err := a.recomputer.RunAll(ctx, false); err != nil {
			return err
		}
		res := a.recomputer.Latest()
		if *what == "totals" {
			names, err := a.pairNames(ctx)
			if err != nil {
				return err
			}
			data = export.Totals(res, names)
		} else {
			names, err := a.clubNames(ctx)
			if err != nil {
				return err
			}
			data = export.Clubs(res.Clubs, names)
		}
	default:
		return fmt.Errorf("unknown export %q", *what)
	}

	path := *out
	if path == "" {
		path = export.GenerateFilename(name, format)
	}
	exporter := export.NewExporter(export.Options{Format: format, FilePath: path, PrettyJSON: true, Overwrite: *overwrite})
	if err := exporter.Export(data); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func (a *app) runChart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	kind := fs.String("kind", "progress", "standings (one session) or progress (running averages)")
	session := fs.Int("session", 0, "Session for the standings chart")
	top := fs.Int("top", 10, "Pairs to include")
	out := fs.String("out", "", "Output HTML file")
	open := fs.Bool("open", false, "Open the chart in the browser")
	if err := fs.Parse(args); err != nil {
		return err
	}

	names, err := a.pairNames(ctx)
	if err != nil {
		return err
	}
	cfg := charts.DefaultChartConfig()

	var render func(io.Writer) error
	switch *kind {
	case "standings":
		res, err := a.sessionResults(ctx, *session)
		if err != nil {
			return err
		}
		var points []charts.DataPoint
		for _, row := range export.SessionStandings(res, names) {
			if len(points) == *top {
				break
			}
			label := row.Name
			if label == "" {
				label = fmt.Sprintf("Pair %d", row.Pair)
			}
			points = append(points, charts.DataPoint{Label: label, Value: row.Score.Float()})
		}
		cfg.Title = fmt.Sprintf("Session %d", *session)
		cfg.Subtitle = res.Method.String()
		render = func(w io.Writer) error { return charts.StandingsBar(w, points, "Score", cfg) }
	case "progress":
		series, err := a.progress(ctx, names, *top)
		if err != nil {
			return err
		}
		cfg.Title = "Running average"
		render = func(w io.Writer) error { return charts.ProgressLines(w, series, cfg) }
	default:
		return fmt.Errorf("unknown chart %q", *kind)
	}

	path := *out
	if path == "" {
		path = fmt.Sprintf("%s_%s.html", *kind, time.Now().Format("20060102_150405"))
	}
	if err := charts.RenderToFile(path, render); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)

	if *open {
		if err := charts.OpenInBrowser(path); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	}
	return nil
}

// progress builds running averages for the top pairs of the competition.
func (a *app) progress(ctx context.Context, names export.Names, top int) ([]charts.SeriesData, error) {
	if _, err := a.recomputer.RunAll(ctx, false); err != nil {
		return nil, err
	}
	res := a.recomputer.Latest()
	in, err := a.store.LoadCompetition(ctx, a.cfg.Competition.PairCount)
	if err != nil {
		return nil, err
	}

	var labels []string
	var scores [][]float64
	var played [][]bool
	for _, row := range export.Totals(res, names) {
		if len(labels) == top {
			break
		}
		label := row.Name
		if label == "" {
			label = fmt.Sprintf("Pair %d", row.Pair)
		}
		ps := make([]float64, len(in.Sessions))
		pp := make([]bool, len(in.Sessions))
		for i, sess := range in.Sessions {
			if s, ok := sess[row.Pair]; ok && s.Games > 0 {
				ps[i] = s.Score.Float()
				pp[i] = true
			}
		}
		labels = append(labels, label)
		scores = append(scores, ps)
		played = append(played, pp)
	}
	return charts.CumulativeAverages(labels, scores, played), nil
}

func (a *app) runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.watch(ctx)
}

func (a *app) watch(ctx context.Context) error {
	debounce, err := a.cfg.GetDebounce()
	if err != nil {
		return err
	}
	if _, err := a.recomputer.RunAll(ctx, false); err != nil {
		return err
	}

	log.Printf("Watching %s for changes", a.cfgPath)
	w := recompute.NewWatcher(a.cfgPath, a.recomputer, a.dispatcher, debounce)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *app) runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", a.cfg.API.Port, "API server port")
	watchConfig := fs.Bool("watch", true, "Rescore when the config file changes")
	readOnly := fs.Bool("no-auto-recompute", false, "Do not rescore after writes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	server := api.NewServer(&api.Config{
		Port:      *port,
		RateLimit: a.cfg.API.RateLimit,
		Burst:     a.cfg.API.Burst,
	}, handlers.Deps{
		Store:         a.store,
		Recomputer:    a.recomputer,
		Dispatcher:    a.dispatcher,
		AutoRecompute: !*readOnly,
	})
	a.dispatcher.Register(server.NewWebSocketObserver())

	if err := server.Start(); err != nil {
		return err
	}
	fmt.Printf("API server running at http://localhost:%d\n", server.Port())

	if *watchConfig {
		go func() {
			if err := a.watch(ctx); err != nil {
				log.Printf("Watcher stopped: %v", err)
			}
		}()
	}

	<-ctx.Done()
	fmt.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

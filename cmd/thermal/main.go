// Command thermal replays a battery temperature recording as per-layer
// heatmaps, either in the terminal or over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/thermal.report/internal/api"
	"github.com/banshee-data/thermal.report/internal/config"
	"github.com/banshee-data/thermal.report/internal/db"
	"github.com/banshee-data/thermal.report/internal/extract"
	"github.com/banshee-data/thermal.report/internal/render"
	"github.com/banshee-data/thermal.report/internal/thermal"
	"github.com/banshee-data/thermal.report/internal/units"
	"github.com/banshee-data/thermal.report/internal/version"
)

var (
	configPath  = flag.String("config", "", "Session config file (.json, .yaml or .yml); built-in defaults when empty")
	csvPath     = flag.String("csv", "", "Channel CSV export to load")
	dbPath      = flag.String("db", "", "SQLite database holding coolant signals (optional)")
	fileID      = flag.String("file-id", "", "Recording id for coolant signal lookup (defaults to the CSV base name)")
	layoutsDir  = flag.String("layouts", "", "Layout directory (overrides config)")
	layoutName  = flag.String("layout", "", "Layout to activate at startup (overrides config)")
	listen      = flag.String("listen", ":8080", "Listen address")
	unitsFlag   = flag.String("units", units.Celsius, "Temperature units for API readouts ("+units.GetValidUnitsString()+")")
	termMode    = flag.Bool("term", false, "Play back in the terminal instead of serving HTTP")
	plotPath    = flag.String("plot", "", "Write the full trend plot to this PNG and exit")
	migrateOnly = flag.Bool("migrate-only", false, "Apply database migrations to -db and exit")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("thermal"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	if *migrateOnly {
		return migrate(*dbPath)
	}
	if *csvPath == "" {
		return errors.New("-csv is required")
	}
	if !units.IsValid(*unitsFlag) {
		return fmt.Errorf("invalid -units %q, must be one of: %s", *unitsFlag, units.GetValidUnitsString())
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *layoutsDir != "" {
		cfg.LayoutsDir = layoutsDir
	}
	if *layoutName != "" {
		cfg.DefaultLayout = layoutName
	}

	var database *db.DB
	if *dbPath != "" {
		database, err = db.NewDB(*dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
	}

	id := *fileID
	if id == "" {
		id = defaultFileID(*csvPath)
	}
	ds, err := loadDataset(ctx, *csvPath, database, id)
	if err != nil {
		return err
	}
	log.Printf("loaded %d sensors x %d samples from %s", len(ds.Records), ds.Len(), *csvPath)

	session, err := thermal.NewSession(ds, cfg.ModuleConfig(), thermal.NewOSLayoutStore(cfg.GetLayoutsDir()))
	if err != nil {
		return err
	}
	// A bad startup layout is not fatal; the session keeps the empty one.
	_, _ = session.SetLayout(cfg.GetDefaultLayout())

	if *plotPath != "" {
		f := session.Frame(session.Len() - 1)
		title := fmt.Sprintf("%s %s", id, f.Layout)
		if err := render.SaveTrendPlot(*plotPath, title, render.TrendSeries{CellRange: f.CellRangeTrend, LayerMeanRange: f.LayerMeanRangeTrend}); err != nil {
			return err
		}
		log.Printf("wrote trend plot to %s", *plotPath)
		return nil
	}

	opts := thermal.PlayerOptions{Interval: cfg.GetAutoplayInterval(), Step: cfg.GetStepSize()}
	if *termMode {
		return playTerminal(ctx, session, opts, cfg.GetVMin(), cfg.GetVMax())
	}
	return serve(ctx, session, database, opts, cfg)
}

func loadConfig(path string) (*config.SessionConfig, error) {
	if path == "" {
		return config.DefaultSessionConfig(), nil
	}
	cfg, err := config.LoadSessionConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func migrate(path string) error {
	if path == "" {
		return errors.New("-migrate-only needs -db")
	}
	database, err := db.NewDB(path)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	defer database.Close()

	v, dirty, err := database.MigrateVersion(db.MigrationsFS())
	if err != nil {
		return err
	}
	log.Printf("database %s at schema version %d (dirty=%v)", path, v, dirty)
	return nil
}

// defaultFileID is the CSV file name without directory or extension.
func defaultFileID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// loadDataset extracts the sensor matrix from the CSV at path and, when a
// database is given, the coolant signals recorded for fileID.
func loadDataset(ctx context.Context, path string, database *db.DB, fileID string) (*thermal.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	channels, err := extract.ReadCSV(f)
	if err != nil {
		return nil, err
	}
	records, raw, err := extract.FromChannels(channels)
	if err != nil {
		return nil, err
	}

	var coolant thermal.CoolantSeries
	if database != nil {
		coolant, err = database.CoolantSignals(ctx, fileID)
		if err != nil {
			return nil, fmt.Errorf("failed to load coolant signals: %w", err)
		}
	}
	return thermal.NewDataset(records, raw, coolant)
}

func playTerminal(ctx context.Context, session *thermal.Session, opts thermal.PlayerOptions, vmin, vmax float64) error {
	opts.OnFrame = func(f thermal.FrameResult) {
		if err := render.PrintFrame(os.Stdout, f, vmin, vmax, true); err != nil {
			log.Printf("failed to draw frame: %v", err)
		}
	}
	player := thermal.NewPlayer(session, opts)
	player.Play()
	if err := player.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serve(ctx context.Context, session *thermal.Session, database *db.DB, opts thermal.PlayerOptions, cfg *config.SessionConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	player := thermal.NewPlayer(session, opts)
	mux := api.NewServer(api.Config{
		Session: session,
		Player:  player,
		Units:   *unitsFlag,
		VMin:    cfg.GetVMin(),
		VMax:    cfg.GetVMax(),
	}).ServeMux()
	if database != nil {
		if err := database.AttachAdminRoutes(mux); err != nil {
			return fmt.Errorf("failed to attach database routes: %w", err)
		}
	}

	server := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(mux),
	}

	var wg sync.WaitGroup

	// autoplay runs for the life of the server; the API toggles it
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := player.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("player stopped: %v", err)
		}
	}()

	errc := make(chan error, 1)
	go func() {
		log.Printf("session %s listening on %s", session.ID, *listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			cancel()
			wg.Wait()
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	cancel()
	wg.Wait()
	log.Printf("Graceful shutdown complete")
	return nil
}

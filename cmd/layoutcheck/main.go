// Command layoutcheck captures every configured region once, saves the crops
// for inspection and exits non-zero when any region is unusable.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/ravushimo/gunsmoke-scanner/internal/adapters/screen"
	"github.com/ravushimo/gunsmoke-scanner/internal/config"
	"github.com/ravushimo/gunsmoke-scanner/internal/layoutcheck"
	"github.com/ravushimo/gunsmoke-scanner/pkg/logger"
)

const (
	fallbackWidth  = 1920
	fallbackHeight = 1080
)

func main() {
	var (
		outDir      = flag.String("out", layoutcheck.DefaultOutputDir, "directory for captured region images")
		minCoverage = flag.Float64("min-coverage", layoutcheck.DefaultMinCoverage, "minimum ink coverage percent per region")
		initConfig  = flag.Bool("init", false, "write a starter config for the current screen and exit")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	capturer := screen.NewCapturer(screen.NewDisplay())

	if *initConfig {
		path, _ := config.Path()
		w, h := capturer.ScreenSize()
		if w <= 0 || h <= 0 {
			w, h = fallbackWidth, fallbackHeight
		}
		if err := config.WriteDefault(ctx, path, w, h); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s for %dx%d; adjust the rows and run again\n", path, w, h)
		return
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	capturer = screen.NewCapturer(screen.NewDisplay(), screen.WithTimeout(cfg.RegionTimeout()))
	checker := layoutcheck.New(capturer,
		layoutcheck.WithOutputDir(*outDir),
		layoutcheck.WithMinCoverage(*minCoverage),
	)

	res, err := checker.Run(ctx, cfg.Layout(), cfg.ScreenResolution)
	if err != nil {
		fmt.Fprintln(os.Stderr, "layout check failed:", err)
		os.Exit(1)
	}
	report(os.Stdout, res, *outDir)
	if !res.OK() {
		os.Exit(1)
	}
}

// report prints one line per region followed by a summary.
func report(w io.Writer, res layoutcheck.Result, outDir string) {
	fmt.Fprintf(w, "screen: %dx%d\n", res.ScreenWidth, res.ScreenHeight)
	if res.Mismatch {
		fmt.Fprintln(w, "warning: layout was recorded at a different resolution")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tFIELD\tREGION\tSTATUS\tCOVERAGE")
	failed := 0
	for _, r := range res.Regions {
		if r.Status != layoutcheck.StatusOK {
			failed++
		}
		fmt.Fprintf(tw, "%d\t%s\t[%d %d %d %d]\t%s\t%.1f%%\n",
			r.Row, r.Field, r.Region.X, r.Region.Y, r.Region.Width, r.Region.Height, r.Status, r.Coverage)
	}
	_ = tw.Flush()

	if failed == 0 {
		fmt.Fprintf(w, "all %d regions ok; images in %s\n", len(res.Regions), outDir)
		return
	}
	fmt.Fprintf(w, "%d of %d regions need attention; images in %s\n", failed, len(res.Regions), outDir)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/brogergvhs/noveld/internal/cache"
	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/downloader"
	"github.com/brogergvhs/noveld/internal/fetcher"
	"github.com/brogergvhs/noveld/internal/output"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/providers/sites"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	// selection
	flagChapter string
	flagRange   string
	flagList    string

	// output
	flagOutput          string
	flagOutputDir       string
	flagNoMissingMarker bool
	flagDryRun          bool
	flagNoCache         bool

	// runtime
	flagWorkers    int
	flagFailFast   bool
	flagBestEffort bool
	flagRetries    int
	flagTimeout    time.Duration
	flagRate       float64
	flagUserAgent  string
	flagCloudflare bool
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a novel into one text file. Uses the defaults from the selected config, overwritten by CLI flags",
		Args:  cobra.ExactArgs(1),
		RunE:  runDownload,
	}

	// selection
	downloadCmd.Flags().StringVar(&flagChapter, "chapter", "", "download a single chapter by number or title (e.g. 5)")
	downloadCmd.Flags().StringVar(&flagRange, "range", "", "download a range of chapters by number (e.g. 5-12 or 100-)")
	downloadCmd.Flags().StringVar(&flagList, "list", "", "download specific chapter numbers (e.g. 1,3,5)")

	// output
	downloadCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default <author>_<title>.txt)")
	downloadCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "directory for the output file")
	downloadCmd.Flags().BoolVar(&flagNoMissingMarker, "no-missing-marker", false, "leave failed chapters out instead of writing a placeholder line")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "list the chapters that would be downloaded, don't download")
	downloadCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "don't reuse or keep chapters from earlier runs")

	// runtime
	downloadCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "parallel chapter downloads (default 6)")
	downloadCmd.Flags().BoolVar(&flagFailFast, "fail-fast", false, "stop at the first failed chapter and write nothing")
	downloadCmd.Flags().BoolVar(&flagBestEffort, "best-effort", false, "keep going past failed chapters (default)")
	downloadCmd.Flags().IntVar(&flagRetries, "retries", -1, "extra attempts per request on network errors and 5xx/429")
	downloadCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "per request timeout (e.g. 30s)")
	downloadCmd.Flags().Float64Var(&flagRate, "rate", 0, "max requests per second across all workers")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	downloadCmd.Flags().BoolVar(&flagCloudflare, "cloudflare", false, "use a browser-like TLS handshake for sites behind Cloudflare")

	downloadCmd.MarkFlagsMutuallyExclusive("fail-fast", "best-effort")
	downloadCmd.MarkFlagsMutuallyExclusive("chapter", "range", "list")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	entryURL := args[0]

	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:    flagIgnoreConfig,
		Debug:           flagDebug,
		OutputDir:       flagOutputDir,
		Workers:         flagWorkers,
		FailFast:        flagFailFast,
		BestEffort:      flagBestEffort,
		NoMissingMarker: flagNoMissingMarker,
		NoCache:         flagNoCache,
		Retries:         flagRetries,
		Timeout:         flagTimeout,
		RateLimit:       flagRate,
		UserAgent:       flagUserAgent,
		Cloudflare:      flagCloudflare,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug, cfg.LogLevel)
	defer logSvc.Sync()

	logSvc.Debugf("config: %s", usedPath)
	if cfg.Debug {
		fmt.Fprintln(os.Stderr, "Full config:")
		cfg.Print(os.Stderr)
	}

	reg, err := sites.Default()
	if err != nil {
		return err
	}

	client := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:          cfg.Timeout,
		UserAgent:        cfg.UserAgent,
		CloudflareBypass: cfg.CloudflareBypass,
		DebugLogger:      logSvc,
	})

	fopts := fetcher.DefaultOptions()
	fopts.Retries = cfg.Retries
	fopts.Backoff = cfg.RetryBackoff
	fopts.RatePerSecond = cfg.RateLimit
	fopts.Logger = logSvc
	f := fetcher.New(client, fopts)

	ctx, stop := util.InterruptContext(context.Background())
	defer stop()

	sel := chapters.Selection{Chapter: flagChapter, Range: flagRange, List: flagList}

	if flagDryRun {
		return dryRun(ctx, f, reg, entryURL, sel, logSvc)
	}

	// Bars are hidden in debug mode so log lines are readable.
	var barOut io.Writer = os.Stderr
	if cfg.Debug {
		barOut = nil
	}
	pm := ui.NewProgressManager(barOut)
	handle := pm.Register("Chapters")

	dopts := downloader.Options{
		Workers:       cfg.Workers,
		Strict:        cfg.Strict,
		MissingMarker: cfg.MissingMarker,
		Logger:        logSvc,
		Progress:      handle,
	}
	if cfg.Cache {
		dopts.Cache = func(site string, book providers.Book) (downloader.ChapterCache, error) {
			dir, err := cache.Open(cfg.CacheDir, site, book)
			if err != nil {
				return nil, err
			}
			logSvc.Debugf("chapter cache: %s", dir.Path())
			return dir, nil
		}
	}
	dl := downloader.New(f, dopts)

	var outPath string
	open := func(book providers.Book) (output.Sink, error) {
		file, err := util.CreateAtomic(chapters.OutputPath(book, flagOutput, cfg.OutputDir))
		if err != nil {
			return nil, err
		}
		outPath = file.Path()
		return file, nil
	}

	var selector downloader.Selector
	if !sel.Empty() {
		selector = sel.Apply
	}

	start := time.Now()
	rep, runErr := dl.Run(ctx, reg, entryURL, open, selector)
	handle.MarkDone()
	pm.Close()

	if rep == nil {
		return runErr
	}

	stats := &ui.Stats{}
	stats.TotalChapters.Store(int64(len(rep.Slots)))
	stats.DoneChapters.Store(int64(rep.Succeeded()))
	stats.FailedChapters.Store(int64(len(rep.Failed())))
	stats.TotalBytes.Store(rep.Bytes)
	stats.WrittenBytes.Store(rep.Written)

	printSummary(os.Stdout, rep, stats, outPath, time.Since(start))

	if runErr != nil {
		if cfg.Strict {
			logAbort(logSvc, runErr)
		}
		if errors.Is(runErr, context.Canceled) && !cfg.Strict && rep.Written > 0 {
			fmt.Printf("Interrupted: kept the first %d chapters in %s\n", countWritten(rep), outPath)
		}
		return runErr
	}

	return nil
}

func dryRun(ctx context.Context, f downloader.PageFetcher, reg downloader.Resolver, entryURL string, sel chapters.Selection, logSvc *ui.Logger) error {
	dl := downloader.New(f, downloader.Options{Logger: logSvc})

	adapter, err := reg.Resolve(entryURL)
	if err != nil {
		return err
	}

	book, refs, err := dl.Discover(ctx, adapter, entryURL)
	if err != nil {
		return err
	}

	selected, err := sel.Apply(refs)
	if err != nil {
		return err
	}

	fmt.Printf("%s by %s (%s)\n", book.Name, book.Author, adapter.Name())
	fmt.Printf("Dry-run: %d of %d chapters selected.\n\n", len(selected), len(refs))
	for _, r := range selected {
		fmt.Printf("%4d) %s\n      %s\n", r.Index+1, r.TitleHint, r.URL)
	}

	return nil
}

func printSummary(w io.Writer, rep *downloader.Report, stats *ui.Stats, outPath string, took time.Duration) {
	total := stats.TotalChapters.Load()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s by %s (%s)\n", rep.Book.Name, rep.Book.Author, rep.Site)
	fmt.Fprintf(w, "%d/%d chapters downloaded\n", stats.DoneChapters.Load(), total)
	if rep.Cached > 0 {
		fmt.Fprintf(w, "Cached:   %d (from an earlier run)\n", rep.Cached)
	}
	if n := stats.FailedChapters.Load(); n > 0 {
		fmt.Fprintf(w, "Failed:   %d\n", n)
	}
	if n := stats.Pending(); n > 0 {
		fmt.Fprintf(w, "Skipped:  %d (interrupted)\n", n)
	}
	fmt.Fprintf(w, "Fetched:  %s\n", util.Human(stats.TotalBytes.Load()))
	if stats.WrittenBytes.Load() > 0 {
		fmt.Fprintf(w, "Written:  %s -> %s\n", util.Human(stats.WrittenBytes.Load()), outPath)
	}
	fmt.Fprintf(w, "Time:     %s\n", took.Round(time.Second))

	if stats.Complete() {
		return
	}
	failed := rep.Failed()
	if len(failed) == 0 {
		return
	}

	fmt.Fprintln(w)
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Title", "URL", "Reason"})
	for _, s := range failed {
		t.AppendRow(table.Row{s.Ref.Index + 1, s.Ref.TitleHint, s.Ref.URL, reason(s.Err)})
	}
	t.Render()
}

// logAbort names the chapter that stopped a strict run.
func logAbort(log *ui.Logger, err error) bool {
	var ce *downloader.ChapterError
	if !errors.As(err, &ce) {
		return false
	}

	log.Errorf("stopped at chapter %d (%s); nothing was written", ce.Index+1, ce.URL)
	return true
}

// countWritten is the length of the settled prefix a cancelled run keeps.
func countWritten(rep *downloader.Report) int {
	n := 0
	for _, s := range rep.Slots {
		if s.Chapter == nil && (s.Err == nil || errors.Is(s.Err, context.Canceled)) {
			break
		}
		n++
	}

	return n
}

// reason unwraps the per-chapter wrapper so the table shows the cause.
func reason(err error) string {
	var ce *downloader.ChapterError
	if errors.As(err, &ce) && ce.Err != nil {
		return ce.Err.Error()
	}

	return err.Error()
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"talkdoc/internal/artifact"
	"talkdoc/internal/assemble"
	"talkdoc/internal/checkpoint"
	"talkdoc/internal/config"
	"talkdoc/internal/database"
	"talkdoc/internal/directory"
	"talkdoc/internal/discover"
	"talkdoc/internal/generate"
	"talkdoc/internal/identity"
	"talkdoc/internal/pipeline"
	"talkdoc/internal/presenter"
	"talkdoc/internal/server"
	"talkdoc/internal/validate"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "talkdoc",
	Short:   "Conference talks into verified technical documents",
	Long:    "talkdoc fetches a talk transcript, verifies the subject's identity, generates a technical case study, and gates every step on quality checkpoints.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(presenterCmd)
	rootCmd.AddCommand(assembleCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("talkdoc", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/talkdoc/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the transcript service, directory URL, and LLM provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Runs:")
		fmt.Printf("  Total: %d\n", stats.TotalRuns)
		fmt.Printf("  Completed: %d\n", stats.CompletedRuns)
		fmt.Printf("  Stopped on failure: %d\n", stats.FailedRuns)
		fmt.Println("\nOutput:")
		fmt.Printf("  Documents: %d\n", stats.Documents)
		fmt.Println("\nDirectory cache:")
		fmt.Printf("  Entities: %d\n", stats.CachedEntities)
		return nil
	},
}

// --- run command ---

var (
	runStrict  bool
	runDocType string
)

var runCmd = &cobra.Command{
	Use:   "run <video-url> <company>",
	Short: "Run the full pipeline for one talk video",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if runStrict {
			cfg.Pipeline.Strict = true
		}
		if cmd.Flags().Changed("type") {
			cfg.Pipeline.DocType = runDocType
		}

		pipe, err := pipeline.New(cfg, db)
		if err != nil {
			return err
		}

		result, err := pipe.Run(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Run %s: %s\n\n", result.RunID, result.Report.State)
		printReportTable(result.Report.Entries)

		if result.Document != nil {
			fmt.Printf("\nDocument: %s (score %.2f)\n", result.Document.Slug, *result.Score)
			fmt.Println("Run 'talkdoc serve' to view it.")
		}
		for _, w := range result.Report.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		for _, e := range result.Report.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}

		os.Exit(reportExitCode(result.Report))
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "Stop on fabrication or numeric-claim warnings instead of continuing")
	runCmd.Flags().StringVar(&runDocType, "type", artifact.DocTypeCaseStudy, "Document type: case_study | reference_architecture")
}

func reportExitCode(report *checkpoint.Report) int {
	if report.Failed() {
		return validate.StatusFail.ExitCode()
	}
	if len(report.Warnings) > 0 {
		return validate.StatusWarn.ExitCode()
	}
	return validate.StatusPass.ExitCode()
}

// --- discover command ---

var discoverDaysBack int

var discoverCmd = &cobra.Command{
	Use:   "discover <query>",
	Short: "Search configured channel feeds for talks about a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feeds := make([]discover.FeedConfig, 0, len(cfg.Discovery.Feeds))
		for _, f := range cfg.Discovery.Feeds {
			feeds = append(feeds, discover.FeedConfig{URL: f.URL, Name: f.Name})
		}
		if len(feeds) == 0 {
			return fmt.Errorf("no discovery feeds configured")
		}

		finder := discover.NewFinder(feeds, cfg.Presenter.MatchFloor)
		talks := finder.Find(args[0], discoverDaysBack)

		if len(talks) == 0 {
			fmt.Printf("No talks found for %q in the last %d days.\n", args[0], discoverDaysBack)
			return nil
		}

		rows := make([][]string, 0, len(talks))
		for _, t := range talks {
			rows = append(rows, []string{
				t.VideoID, t.Title, t.Channel, t.PublishedDate,
			})
		}
		fmt.Println(renderTable(
			[]string{"Video", "Title", "Channel", "Published"}, rows, nil))
		return nil
	},
}

func init() {
	discoverCmd.Flags().IntVar(&discoverDaysBack, "days-back", 30, "How far back to search")
}

// --- resolve command ---

var resolveFloor float64

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Resolve a claimed company name against the membership directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadDirectory(cmd.Context())
		if err != nil {
			return err
		}

		floor := cfg.Identity.Floor
		if cmd.Flags().Changed("floor") {
			floor = resolveFloor
		}

		match := identity.Resolve(args[0], records, floor)
		if match.Matched() {
			fmt.Printf("%s -> %s (%s, confidence %.2f)\n",
				match.QueryName, *match.MatchedName, match.Method, match.Confidence)
		} else {
			fmt.Printf("%s: no match at or above floor %.2f\n", match.QueryName, floor)
		}

		result := validate.Identity(match.Confidence, match.Method, cfg.Identity.WarnBelow)
		emitFindings(result)
		os.Exit(result.Status.ExitCode())
		return nil
	},
}

func init() {
	resolveCmd.Flags().Float64Var(&resolveFloor, "floor", identity.DefaultFloor, "Minimum similarity for a match")
}

// --- presenter command ---

var presenterFloor float64

var presenterCmd = &cobra.Command{
	Use:   "presenter <name> <page-url>",
	Short: "Verify a presenter name appears on a profile page",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		floor := cfg.Presenter.MatchFloor
		if cmd.Flags().Changed("floor") {
			floor = presenterFloor
		}

		verifier := presenter.NewVerifier(floor)
		verification, err := verifier.Verify(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		switch {
		case verification.Found && verification.Strict:
			fmt.Printf("%s verified on %s (exact match)\n", verification.Name, verification.PageURL)
			os.Exit(validate.StatusPass.ExitCode())
		case verification.Found:
			fmt.Printf("%s verified on %s (fuzzy match)\n", verification.Name, verification.PageURL)
			fmt.Fprintf(os.Stderr, "warning: only a fuzzy match for %q on the page\n", verification.Name)
			os.Exit(validate.StatusWarn.ExitCode())
		default:
			fmt.Printf("%s NOT found on %s\n", verification.Name, verification.PageURL)
			fmt.Fprintf(os.Stderr, "error: presenter %q not found on page\n", verification.Name)
			os.Exit(validate.StatusFail.ExitCode())
		}
		return nil
	},
}

func init() {
	presenterCmd.Flags().Float64Var(&presenterFloor, "floor", 0.85, "Minimum similarity for a fuzzy page match")
}

// --- assemble command ---

var (
	assembleAnalysisPath   string
	assembleTranscriptPath string
	assembleSectionsPath   string
	assembleCompany        string
	assembleOutPath        string
	assembleDocType        string
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble a markdown document from saved artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis, err := artifact.Load[artifact.StructuredAnalysis](assembleAnalysisPath)
		if err != nil {
			return fmt.Errorf("loading analysis: %w", err)
		}
		t, err := artifact.Load[artifact.Transcript](assembleTranscriptPath)
		if err != nil {
			return fmt.Errorf("loading transcript: %w", err)
		}
		sections, err := artifact.Load[map[string]string](assembleSectionsPath)
		if err != nil {
			return fmt.Errorf("loading sections: %w", err)
		}

		records, err := loadDirectory(cmd.Context())
		if err != nil {
			return err
		}
		match := identity.Resolve(assembleCompany, records, cfg.Identity.Floor)

		out, err := assemble.Assemble(assemble.Input{
			DocType:      assembleDocType,
			Match:        match,
			Transcript:   t,
			Analysis:     analysis,
			Sections:     *sections,
			SectionOrder: generate.SectionsFor(assembleDocType),
		})
		if err != nil {
			return err
		}

		if assembleOutPath == "" {
			fmt.Print(out.Markdown)
			return nil
		}
		if err := os.WriteFile(assembleOutPath, []byte(out.Markdown), 0o644); err != nil {
			return fmt.Errorf("writing document: %w", err)
		}
		fmt.Printf("Wrote %s (%s)\n", assembleOutPath, out.Slug)
		return nil
	},
}

func init() {
	assembleCmd.Flags().StringVar(&assembleAnalysisPath, "analysis", "", "Path to the structured analysis JSON")
	assembleCmd.Flags().StringVar(&assembleTranscriptPath, "transcript", "", "Path to the transcript JSON")
	assembleCmd.Flags().StringVar(&assembleSectionsPath, "sections", "", "Path to the generated sections JSON")
	assembleCmd.Flags().StringVar(&assembleCompany, "company", "", "Company name to verify and attribute")
	assembleCmd.Flags().StringVarP(&assembleOutPath, "out", "o", "", "Output path (stdout when omitted)")
	assembleCmd.Flags().StringVar(&assembleDocType, "type", artifact.DocTypeCaseStudy, "Document type: case_study | reference_architecture")
	for _, name := range []string{"analysis", "transcript", "sections", "company"} {
		_ = assembleCmd.MarkFlagRequired(name)
	}
}

// --- report command ---

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Show recent runs, or the checkpoint report for one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if len(args) == 0 {
			return listRuns(db)
		}
		return showRun(db, args[0])
	},
}

func listRuns(db *database.DB) error {
	runs, err := db.ListRuns(20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs yet. Start one with: talkdoc run <video-url> <company>")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		company := ""
		if r.Company != nil {
			company = *r.Company
		}
		score := "-"
		if r.Score != nil {
			score = fmt.Sprintf("%.2f", *r.Score)
		}
		started := ""
		if r.StartedAt != nil {
			started = *r.StartedAt
		}
		rows = append(rows, []string{
			r.ID[:8], r.VideoID, company, r.State, score, started,
		})
	}
	fmt.Println(renderTable(
		[]string{"Run", "Video", "Company", "State", "Score", "Started"},
		rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
	return nil
}

func showRun(db *database.DB, runID string) error {
	run, err := db.GetRun(runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	records, err := db.GetCheckpoints(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s: %s (video %s)\n\n", run.ID, run.State, run.VideoID)

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		score := "-"
		if rec.Score != nil {
			score = fmt.Sprintf("%.2f", *rec.Score)
		}
		findings := strings.Join(append(append([]string{}, rec.Errors...), rec.Warnings...), "; ")
		rows = append(rows, []string{
			fmt.Sprintf("%d", rec.Seq), rec.Name, rec.Status, score,
			fmt.Sprintf("%dms", rec.ElapsedMS), findings,
		})
	}
	fmt.Println(renderTable(
		[]string{"#", "Checkpoint", "Status", "Score", "Elapsed", "Findings"},
		rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
	return nil
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web viewer",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

// --- helpers ---

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "talkdoc.db")
	return database.Open(dbPath)
}

func loadDirectory(ctx context.Context) ([]identity.EntityRecord, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	dir := cfg.Directory
	client := directory.New(dir.URL, dir.LocalPath, dir.CacheTTLHours, dir.EndUserOnly, db)
	return client.Load(ctx)
}

func printReportTable(entries []checkpoint.Entry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		score := "-"
		if e.Score != nil {
			score = fmt.Sprintf("%.2f", *e.Score)
		}
		findings := strings.Join(append(append([]string{}, e.Errors...), e.Warnings...), "; ")
		rows = append(rows, []string{
			e.Name, e.Status.String(), score, e.Elapsed.Round(time.Millisecond).String(), findings,
		})
	}
	fmt.Println(renderTable(
		[]string{"Checkpoint", "Status", "Score", "Elapsed", "Findings"},
		rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"talkdoc/internal/artifact"
	"talkdoc/internal/identity"
	"talkdoc/internal/score"
	"talkdoc/internal/validate"
)

// The check subcommands run individual quality gates on saved JSON
// artifacts. Each prints a verdict to stdout, findings to stderr, and exits
// 0 on pass, 1 on warnings, 2 on failure.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run individual quality gates on saved artifacts",
}

func init() {
	checkCmd.AddCommand(checkTranscriptCmd)
	checkCmd.AddCommand(checkAnalysisCmd)
	checkCmd.AddCommand(checkFabricationCmd)
	checkCmd.AddCommand(checkConsistencyCmd)
	checkCmd.AddCommand(checkDocumentCmd)
}

// emitFindings prints verdict and findings, then exits with the gate's code.
func emitFindings(r *validate.Result) {
	for _, e := range r.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

func finish(name string, r *validate.Result) {
	if r.Score != nil {
		fmt.Printf("%s: %s (score %.2f)\n", name, r.Status, *r.Score)
	} else {
		fmt.Printf("%s: %s\n", name, r.Status)
	}

	if len(r.SubScores) > 0 {
		rows := make([][]string, 0, len(r.SubScores))
		for _, dim := range score.DimensionNames() {
			if sub, ok := r.SubScores[dim]; ok {
				rows = append(rows, []string{dim, fmt.Sprintf("%.2f", sub)})
			}
		}
		fmt.Println(renderTable([]string{"Dimension", "Score"}, rows,
			[]columnAlignment{alignLeft, alignRight}))
	}

	emitFindings(r)
	os.Exit(r.Status.ExitCode())
}

// --- check transcript ---

var checkTranscriptCmd = &cobra.Command{
	Use:   "transcript <transcript.json>",
	Short: "Gate a transcript on length, word count, and segment density",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := artifact.Load[artifact.Transcript](args[0])
		if err != nil {
			return err
		}
		finish("transcript", validate.Transcript(t, cfg.Transcript.Thresholds))
		return nil
	},
}

// --- check analysis ---

var checkAnalysisSchema string

var checkAnalysisCmd = &cobra.Command{
	Use:   "analysis <analysis.json>",
	Short: "Validate a structured analysis against its schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis, err := artifact.Load[artifact.StructuredAnalysis](args[0])
		if err != nil {
			return err
		}
		schema, err := cfg.Schema(checkAnalysisSchema)
		if err != nil {
			return err
		}
		finish("analysis", validate.Structure(analysis, schema))
		return nil
	},
}

func init() {
	checkAnalysisCmd.Flags().StringVar(&checkAnalysisSchema, "schema", "deep_analysis", "Schema name from the config")
}

// --- check fabrication ---

var checkFabricationCmd = &cobra.Command{
	Use:   "fabrication <analysis.json> <transcript.json>",
	Short: "Verify every metric quote appears verbatim in the transcript",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis, err := artifact.Load[artifact.StructuredAnalysis](args[0])
		if err != nil {
			return err
		}
		t, err := artifact.Load[artifact.Transcript](args[1])
		if err != nil {
			return err
		}
		finish("fabrication", validate.Fabrication(analysis.Metrics, t.Text))
		return nil
	},
}

// --- check consistency ---

var checkConsistencyCmd = &cobra.Command{
	Use:   "consistency <document.json> <company>",
	Short: "Detect mixed-up company identity in a generated document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := artifact.Load[artifact.GeneratedDocument](args[0])
		if err != nil {
			return err
		}

		records, err := loadDirectory(cmd.Context())
		if err != nil {
			return err
		}

		finish("consistency", validate.Consistency(doc.Sections, args[1], identity.KnownNames(records)))
		return nil
	},
}

// --- check document ---

var checkDocThreshold float64

var checkDocumentCmd = &cobra.Command{
	Use:   "document <document.json>",
	Short: "Validate document structure and score its technical depth",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := artifact.Load[artifact.GeneratedDocument](args[0])
		if err != nil {
			return err
		}

		schema, err := cfg.Schema("case_study")
		if err != nil {
			return err
		}
		structure := validate.Structure(doc, schema)

		rubric := cfg.Scoring
		if cmd.Flags().Changed("threshold") {
			rubric.Threshold = checkDocThreshold
		}
		scorer, err := score.New(rubric)
		if err != nil {
			return err
		}
		scored := scorer.Score(doc)

		// Surface both gates; the worse verdict decides the exit code.
		combined := validate.NewResult()
		combined.Status = structure.Status.Escalate(scored.Status)
		combined.Score = scored.Score
		combined.SubScores = scored.SubScores
		combined.Warnings = append(append(combined.Warnings, structure.Warnings...), scored.Warnings...)
		combined.Errors = append(append(combined.Errors, structure.Errors...), scored.Errors...)

		finish("document", combined)
		return nil
	},
}

func init() {
	checkDocumentCmd.Flags().Float64Var(&checkDocThreshold, "threshold", score.DefaultThreshold, "Composite score pass threshold")
}

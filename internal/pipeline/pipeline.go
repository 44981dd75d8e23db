// Package pipeline chains the full run: fetch, gate, generate, gate, and
// only persist a document when every checkpoint let it through.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"talkdoc/internal/artifact"
	"talkdoc/internal/assemble"
	"talkdoc/internal/checkpoint"
	"talkdoc/internal/config"
	"talkdoc/internal/database"
	"talkdoc/internal/directory"
	"talkdoc/internal/generate"
	"talkdoc/internal/identity"
	"talkdoc/internal/score"
	"talkdoc/internal/transcript"
	"talkdoc/internal/validate"
)

// Result holds the outcome of a full run.
type Result struct {
	RunID    string
	Report   *checkpoint.Report
	Document *assemble.Output
	Score    *float64
}

// Pipeline wires the collaborators and validators together for one binary.
type Pipeline struct {
	cfg         *config.Config
	db          *database.DB
	docType     string
	transcripts *transcript.Client
	directory   *directory.Client
	analyzer    *generate.Analyzer
	scorer      *score.Scorer
}

// New creates a pipeline from configuration. Rubric misconfiguration and an
// unknown document type are caught here, before any run starts.
func New(cfg *config.Config, db *database.DB) (*Pipeline, error) {
	scorer, err := score.New(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("invalid scoring rubric: %w", err)
	}

	docType := cfg.Pipeline.DocType
	if docType == "" {
		docType = artifact.DocTypeCaseStudy
	}
	if _, err := cfg.Schema(docType); err != nil {
		return nil, fmt.Errorf("unknown document type %q: %w", docType, err)
	}

	gen := cfg.Generation
	provider := generate.CreateProvider(gen.Provider, gen.Model, gen.OllamaURL, gen.OpenAIModel, gen.APIKeyEnv)

	dir := cfg.Directory
	return &Pipeline{
		cfg:         cfg,
		db:          db,
		docType:     docType,
		transcripts: transcript.New(cfg.Transcript.ServiceURL),
		directory:   directory.New(dir.URL, dir.LocalPath, dir.CacheTTLHours, dir.EndUserOnly, db),
		analyzer:    generate.NewAnalyzer(provider, gen.MaxTokens),
		scorer:      scorer,
	}, nil
}

// runState is the artifact chain one run accumulates. Each field is written
// by exactly one checkpoint and read-only afterwards.
type runState struct {
	transcript *artifact.Transcript
	records    []identity.EntityRecord
	match      artifact.MatchResult
	analysis   *artifact.StructuredAnalysis
	document   *assemble.Output
	score      *validate.Result
}

// Run processes one talk video end to end. companyHint is the claimed
// subject, usually taken from the talk title or the operator.
func (p *Pipeline) Run(ctx context.Context, videoURL, companyHint string) (*Result, error) {
	videoID, err := transcript.ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	if err := p.db.InsertRun(runID, videoID, &videoURL, nil); err != nil {
		return nil, err
	}
	log.Printf("Run %s started for video %s (%s)", runID, videoID, companyHint)

	state := &runState{}
	checkpoints := p.checkpoints(state, runID, videoID, companyHint)

	orch := checkpoint.New(p.cfg.Pipeline.Strict)
	report := orch.Execute(ctx, checkpoints)

	result := &Result{RunID: runID, Report: report}
	if report.State == checkpoint.Completed {
		result.Document = state.document
		result.Score = state.score.Score
	}

	if err := p.persist(runID, report, result); err != nil {
		return result, err
	}
	return result, nil
}

func (p *Pipeline) checkpoints(state *runState, runID, videoID, companyHint string) []checkpoint.Checkpoint {
	return []checkpoint.Checkpoint{
		{
			Name: "transcript",
			Run: func(ctx context.Context) (*validate.Result, error) {
				t, err := p.transcripts.Fetch(ctx, videoID)
				if err != nil {
					return nil, err
				}
				state.transcript = t
				return validate.Transcript(t, p.cfg.Transcript.Thresholds), nil
			},
		},
		{
			Name: "identity",
			Run: func(ctx context.Context) (*validate.Result, error) {
				records, err := p.directory.Load(ctx)
				if err != nil {
					return nil, err
				}
				state.records = records
				state.match = identity.Resolve(companyHint, records, p.cfg.Identity.Floor)
				if state.match.Matched() {
					if err := p.db.UpdateRunCompany(runID, *state.match.MatchedName); err != nil {
						log.Printf("Warning: recording company failed: %v", err)
					}
				}
				return validate.Identity(state.match.Confidence, state.match.Method, p.cfg.Identity.WarnBelow), nil
			},
		},
		{
			Name: "analysis",
			Run: func(ctx context.Context) (*validate.Result, error) {
				analysis, err := p.analyzer.Analyze(ctx, state.transcript, *state.match.MatchedName)
				if err != nil {
					return nil, err
				}
				state.analysis = analysis
				schema, err := p.cfg.Schema("deep_analysis")
				if err != nil {
					return nil, err
				}
				return validate.Structure(analysis, schema), nil
			},
		},
		{
			Name:       "fabrication",
			StopOnWarn: true,
			Run: func(ctx context.Context) (*validate.Result, error) {
				return validate.Fabrication(state.analysis.Metrics, state.transcript.Text), nil
			},
		},
		{
			Name: "document",
			Run: func(ctx context.Context) (*validate.Result, error) {
				order := generate.SectionsFor(p.docType)
				sections, err := p.analyzer.WriteSections(ctx, state.analysis, state.transcript,
					*state.match.MatchedName, order)
				if err != nil {
					return nil, err
				}
				out, err := assemble.Assemble(assemble.Input{
					DocType:      p.docType,
					Match:        state.match,
					Transcript:   state.transcript,
					Analysis:     state.analysis,
					Sections:     sections,
					SectionOrder: order,
				})
				if err != nil {
					return nil, err
				}
				state.document = out
				schema, err := p.cfg.Schema(p.docType)
				if err != nil {
					return nil, err
				}
				return validate.Structure(out.Document, schema), nil
			},
		},
		{
			Name: "screenshots",
			Run: func(ctx context.Context) (*validate.Result, error) {
				return assemble.ValidateScreenshots(state.document.Markdown), nil
			},
		},
		{
			Name: "consistency",
			Run: func(ctx context.Context) (*validate.Result, error) {
				return validate.Consistency(state.document.Document.Sections,
					*state.match.MatchedName, identity.KnownNames(state.records)), nil
			},
		},
		{
			Name:       "numeric_sweep",
			StopOnWarn: true,
			Run: func(ctx context.Context) (*validate.Result, error) {
				return validate.SweepNumericClaims(state.document.Document.Sections, state.transcript.Text), nil
			},
		},
		{
			Name: "score",
			Run: func(ctx context.Context) (*validate.Result, error) {
				state.score = p.scorer.Score(state.document.Document)
				return state.score, nil
			},
		},
	}
}

// persist writes the run, its checkpoint records, and (for completed runs)
// the document to the database and the data directory.
func (p *Pipeline) persist(runID string, report *checkpoint.Report, result *Result) error {
	for i, entry := range report.Entries {
		rec := database.CheckpointRecord{
			RunID:     runID,
			Seq:       i + 1,
			Name:      entry.Name,
			Status:    entry.Status.String(),
			Score:     entry.Score,
			Warnings:  entry.Warnings,
			Errors:    entry.Errors,
			ElapsedMS: entry.Elapsed.Milliseconds(),
		}
		if err := p.db.InsertCheckpoint(rec); err != nil {
			return err
		}
	}

	if report.State != checkpoint.Completed {
		return p.db.FinishRun(runID, report.State.String(), nil, nil)
	}

	doc := result.Document
	if err := p.db.InsertDocument(doc.Slug, runID, doc.Document.Title, doc.Markdown); err != nil {
		return err
	}

	docDir := filepath.Join(p.cfg.GetDataDir(), "documents")
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		return fmt.Errorf("creating documents directory: %w", err)
	}
	path := filepath.Join(docDir, doc.Slug+".md")
	if err := os.WriteFile(path, []byte(doc.Markdown), 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	log.Printf("Document written: %s", path)

	return p.db.FinishRun(runID, report.State.String(), result.Score, &doc.Slug)
}

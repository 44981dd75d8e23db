package database

// Run is one pipeline run over a single talk video.
type Run struct {
	ID           string
	VideoID      string
	VideoURL     *string
	Company      *string
	State        string // "running", "stopped-fail", or "completed"
	Score        *float64
	DocumentSlug *string
	StartedAt    *string
	FinishedAt   *string
}

// CheckpointRecord holds the persisted outcome of one checkpoint in a run.
type CheckpointRecord struct {
	RunID     string
	Seq       int
	Name      string
	Status    string
	Score     *float64
	Warnings  []string
	Errors    []string
	ElapsedMS int64
}

// CachedEntity is one membership-directory record in the local cache.
type CachedEntity struct {
	Name      string
	Aliases   []string
	FetchedAt string
}

// Document is a finished, publishable document produced by a completed run.
type Document struct {
	Slug      string
	RunID     string
	Title     string
	Markdown  string
	CreatedAt *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalRuns      int
	CompletedRuns  int
	FailedRuns     int
	Documents      int
	CachedEntities int
}

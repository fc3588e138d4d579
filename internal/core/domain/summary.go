package domain

import (
	"sort"
	"time"
)

// Stage names a pipeline stage. Re-entry points run exactly one stage.
type Stage string

// Pipeline stages.
const (
	StageBuild         Stage = "build"
	StageRenormalise   Stage = "renormalise"
	StageRecategorise  Stage = "recategorise"
	StageRefine        Stage = "refine"
	StageResolveImages Stage = "resolve-images"
)

// DropReason explains why a candidate product was excluded.
type DropReason string

// Drop reasons reported by the garbage classifier and the media check.
const (
	DropSpam       DropReason = "spam"
	DropNoImage    DropReason = "no-image"
	DropShortTitle DropReason = "short-title"
	DropNoMedia    DropReason = "no-media"
)

// RunSummary collects the counters reported at the end of a run.
// No individual record failure is silent: each one increments a counter here.
type RunSummary struct {
	RunID     string    `json:"runId"`
	Stage     Stage     `json:"stage"`
	StartedAt time.Time `json:"startedAt"`
	Duration  string    `json:"duration"`

	BlocksParsed      int `json:"blocksParsed"`
	BlocksUnparseable int `json:"blocksUnparseable"`
	OrphanBlocks      int `json:"orphanBlocks"`
	Drafts            int `json:"drafts"`
	FlaggedBlocks     int `json:"flaggedBlocks"`

	ProductsIngested int                `json:"productsIngested"`
	ProductsChanged  int                `json:"productsChanged"`
	Dropped          map[DropReason]int `json:"dropped,omitempty"`

	ImagesResolved   int `json:"imagesResolved"`
	ImagesUnresolved int `json:"imagesUnresolved"`
	UploadsOK        int `json:"uploadsOk"`
	UploadsCached    int `json:"uploadsCached"`
	UploadsFailed    int `json:"uploadsFailed"`

	Backup string `json:"backup,omitempty"`
}

// NewRunSummary creates a summary for a run.
func NewRunSummary(runID string, stage Stage, startedAt time.Time) *RunSummary {
	return &RunSummary{
		RunID:     runID,
		Stage:     stage,
		StartedAt: startedAt,
		Dropped:   make(map[DropReason]int),
	}
}

// Drop records one excluded record.
func (s *RunSummary) Drop(reason DropReason) {
	if s.Dropped == nil {
		s.Dropped = make(map[DropReason]int)
	}
	s.Dropped[reason]++
}

// TotalDropped returns the number of excluded records across all reasons.
func (s *RunSummary) TotalDropped() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

// DropReasons returns the recorded reasons in stable order.
func (s *RunSummary) DropReasons() []DropReason {
	reasons := make([]DropReason, 0, len(s.Dropped))
	for r := range s.Dropped {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}

// Finish stamps the run duration.
func (s *RunSummary) Finish(now time.Time) {
	s.Duration = now.Sub(s.StartedAt).Round(time.Millisecond).String()
}

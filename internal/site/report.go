package site

import (
	"fmt"
	"sync"
	"time"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/metrics"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess BuildOutcome = "success"
	OutcomeWarning BuildOutcome = "warning"
	OutcomeFailed  BuildOutcome = "failed"
)

// IssueCode enumerates machine-parseable issue identifiers. Codes are a
// stable contract and should only be appended.
type IssueCode string

const (
	IssueParseFailure  IssueCode = "PARSE_FAILURE"
	IssueCollision     IssueCode = "PERMALINK_COLLISION"
	IssueConfigInvalid IssueCode = "CONFIG_INVALID"
	IssueRenderFailure IssueCode = "RENDER_FAILURE"
	IssueMissingLayout IssueCode = "MISSING_LAYOUT"
	IssueWriteFailure  IssueCode = "WRITE_FAILURE"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a structured entry describing a discrete problem encountered
// during a build. Message is human-friendly; Code + Stage allow automated
// handling.
type Issue struct {
	Code     IssueCode     `json:"code"`
	Stage    string        `json:"stage"`
	Severity IssueSeverity `json:"severity"`
	Path     string        `json:"path,omitempty"`
	Message  string        `json:"message"`
}

func (i Issue) String() string {
	if i.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", i.Code, i.Path, i.Message)
	}
	return fmt.Sprintf("[%s] %s", i.Code, i.Message)
}

// BuildReport captures the result of one site generation run.
type BuildReport struct {
	BuildID string
	Start   time.Time
	End     time.Time
	Outcome BuildOutcome

	StageDurations map[string]time.Duration

	Posts       int
	Pages       int
	StaticFiles int
	Rendered    int
	Failed      int
	Skipped     int

	DraftsExcluded int
	FutureExcluded int

	Issues []Issue

	mu sync.Mutex
}

func newReport(buildID string) *BuildReport {
	return &BuildReport{
		BuildID:        buildID,
		Start:          time.Now(),
		StageDurations: map[string]time.Duration{},
	}
}

// AddIssue appends a structured issue. Safe for concurrent use from render
// workers.
func (r *BuildReport) AddIssue(code IssueCode, stage string, severity IssueSeverity, path, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Issues = append(r.Issues, Issue{Code: code, Stage: stage, Severity: severity, Path: path, Message: message})
}

// FailedDocuments enumerates the source paths of documents that were skipped
// or whose render failed.
func (r *BuildReport) FailedDocuments() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var paths []string
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError && issue.Path != "" {
			paths = append(paths, issue.Path)
		}
	}
	return paths
}

// IssueLines formats all issues for persistence and display.
func (r *BuildReport) IssueLines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		lines = append(lines, issue.String())
	}
	return lines
}

// HasErrors reports whether any per-document error was recorded. A build with
// errors still completes but must exit non-zero.
func (r *BuildReport) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Duration returns the total build duration.
func (r *BuildReport) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// recordStage closes out one stage: duration plus result classification.
func (r *BuildReport) recordStage(stage string, start time.Time, result metrics.ResultLabel, recorder metrics.Recorder) {
	d := time.Since(start)
	r.mu.Lock()
	r.StageDurations[stage] = d
	r.mu.Unlock()
	recorder.ObserveStageDuration(stage, d)
	recorder.IncStageResult(stage, result)
}

// finalize derives the overall outcome and emits build-level metrics.
func (r *BuildReport) finalize(recorder metrics.Recorder) {
	r.End = time.Now()
	if r.Outcome == "" {
		if r.HasErrors() {
			r.Outcome = OutcomeWarning
		} else {
			r.Outcome = OutcomeSuccess
		}
	}
	recorder.ObserveBuildDuration(r.Duration())
	recorder.IncBuildOutcome(string(r.Outcome))
}

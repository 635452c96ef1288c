package concierge

import "fmt"

// Stage identifies the step of a run in which a unit failed.
type Stage string

// Stage values.
const (
	StageLoadText     Stage = "load-text"
	StageLoadMarkdown Stage = "load-markdown"
	StageLoadPDF      Stage = "load-pdf"
	StageAuth         Stage = "auth"
	StageFetch        Stage = "fetch"
	StageIndex        Stage = "index"
	StageSave         Stage = "save"
)

// Failure records a unit (file, URL or format class) that was skipped.
type Failure struct {
	Unit  string
	Stage Stage
	Err   error
}

// String returns a one-line description of the failure.
func (f Failure) String() string {
	return fmt.Sprintf("%s %s: %v", f.Stage, f.Unit, f.Err)
}

// Summary reports the outcome of an ingestion run.
type Summary struct {
	Documents int
	Files     int
	URLs      int
	Chunks    int
	Tokens    int
	Failures  []Failure
}

// Skipped returns the number of units that failed.
func (s *Summary) Skipped() int {
	return len(s.Failures)
}

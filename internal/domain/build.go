package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// OutcomeStatus is the per-artifact result of a pipeline run.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
)

// Outcome records what happened to one artifact. Digest is the hex SHA-256
// of the bytes written and is set only on success.
type Outcome struct {
	ID     string        `json:"id"`
	Path   string        `json:"path"`
	Kind   string        `json:"kind"`
	Status OutcomeStatus `json:"status"`
	Digest string        `json:"digest,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Digest returns the content digest recorded on outcomes.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// BuildResult lists every artifact outcome in catalog order. It is not
// modified after the pipeline returns it.
type BuildResult struct {
	Outcomes []Outcome `json:"results"`
}

// Failures returns the failed outcomes.
func (r *BuildResult) Failures() []Outcome {
	if r == nil {
		return nil
	}
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status == OutcomeFailure {
			failed = append(failed, o)
		}
	}
	return failed
}

// OK reports whether every artifact was produced.
func (r *BuildResult) OK() bool { return len(r.Failures()) == 0 }

// Outcome looks up an outcome by artifact id.
func (r *BuildResult) Outcome(id string) (Outcome, bool) {
	if r == nil {
		return Outcome{}, false
	}
	for _, o := range r.Outcomes {
		if o.ID == id {
			return o, true
		}
	}
	return Outcome{}, false
}

// BuildStatus enumerates build lifecycle end states.
type BuildStatus string

const (
	BuildStatusSucceeded BuildStatus = "succeeded"
	BuildStatusPartial   BuildStatus = "partial"
	BuildStatusFailed    BuildStatus = "failed"
)

// Build is the history record of one admitted build.
type Build struct {
	ID         string       `json:"id"`
	Branch     string       `json:"branch"`
	Platforms  []string     `json:"platforms,omitempty"`
	Status     BuildStatus  `json:"status"`
	OutputDir  string       `json:"output_dir"`
	Result     *BuildResult `json:"result,omitempty"`
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// StatusFor derives the build status from a pipeline result and fatal error.
func StatusFor(result *BuildResult, err error) BuildStatus {
	switch {
	case err != nil || result == nil:
		return BuildStatusFailed
	case result.OK():
		return BuildStatusSucceeded
	default:
		return BuildStatusPartial
	}
}

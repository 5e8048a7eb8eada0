package model

import (
	"time"
)

// RunStatus represents the current state of a transform run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunMode describes which part of the pipeline a run executed.
type RunMode string

const (
	RunModeValidate  RunMode = "validate"  // load only
	RunModeStats     RunMode = "stats"     // load + aggregate
	RunModeTransform RunMode = "transform" // all four stages
)

// RunInput identifies the files a run worked on.
type RunInput struct {
	Mode     RunMode `json:"mode"`
	Document string  `json:"document"`
	Schema   string  `json:"schema"`
	Output   string  `json:"output,omitempty"`
}

// Run represents a single pipeline invocation.
type Run struct {
	ID        string     `json:"id"`
	Input     RunInput   `json:"input"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	RunID  string        `json:"run_id,omitempty"`
	Stats  *Statistics   `json:"stats,omitempty"`
	Phases []PhaseResult `json:"phases"`
	Error  *RunError     `json:"error,omitempty"`
}

// RunError records why a run failed.
type RunError struct {
	Kind    string `json:"kind"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// PhaseStatus represents the outcome of a pipeline stage.
type PhaseStatus string

const (
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
)

// PhaseResult holds the outcome of a pipeline stage.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Package job owns the localization job model, its status state machine,
// the persistence contract and the coordinator that drives the pipeline.
package job

import (
	"fmt"
	"time"

	"github.com/brandops/backend/internal/quality"
	"github.com/brandops/backend/internal/segment"
)

// Status is the job lifecycle state. Transitions move strictly forward;
// error and cancelled are terminal.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusAnalyzing   Status = "analyzing"
	StatusTranslating Status = "translating"
	StatusGenerating  Status = "generating"
	StatusDone        Status = "done"
	StatusError       Status = "error"
	StatusCancelled   Status = "cancelled"
)

// transitions is the complete legal-move table. Analyzing is skipped when
// the caller supplies segments directly, hence queued → translating.
var transitions = map[Status][]Status{
	StatusQueued:      {StatusAnalyzing, StatusTranslating, StatusError, StatusCancelled},
	StatusAnalyzing:   {StatusTranslating, StatusError, StatusCancelled},
	StatusTranslating: {StatusGenerating, StatusError, StatusCancelled},
	StatusGenerating:  {StatusDone, StatusError, StatusCancelled},
}

// CanTransition reports whether moving from s to next is legal.
func (s Status) CanTransition(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Progress tracks per-language generation advancement.
type Progress struct {
	Completed       int    `json:"completed"`
	Total           int    `json:"total"`
	CurrentLanguage string `json:"current_language,omitempty"`
}

// Job is the unit of localization work and its persisted state.
type Job struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Author    string `json:"author"`
	VideoPath string `json:"video_path"`

	Status   Status   `json:"status"`
	Progress Progress `json:"progress"`

	Style     string   `json:"style"`
	FontSize  int      `json:"font_size"`
	Languages []string `json:"languages"`

	Texts           []string                 `json:"texts,omitempty"` // caller-supplied, timed via scene cuts
	Segments        []segment.Segment        `json:"segments,omitempty"`
	Outputs         map[string]string        `json:"outputs"`          // language → rendered file path
	QualityChecks   map[string]quality.Check `json:"quality_checks"`   // language → review result
	FailedLanguages []string                 `json:"failed_languages"` // languages whose encode failed

	Cancelled bool   `json:"cancelled"`
	Error     string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Version supports optimistic concurrency in the store.
	Version int64 `json:"version"`
}

// advance moves the job to next, enforcing the transition table.
func (j *Job) advance(next Status) error {
	if !j.Status.CanTransition(next) {
		return fmt.Errorf("illegal status transition %s → %s", j.Status, next)
	}
	j.Status = next
	return nil
}

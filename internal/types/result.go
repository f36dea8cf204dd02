package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InsertParameters records the five inputs a sequence was generated from.
type InsertParameters struct {
	Length    float64 `json:"length"`
	Phase     float64 `json:"phase"`
	Strength  float64 `json:"strength"`
	Aperture  float64 `json:"aperture"`
	NumSlices int     `json:"num_slices"`
}

// GenerationResult is the envelope emitted by the CLI for a computed
// nonlinear-insert sequence.
type GenerationResult struct {
	ID          string            `json:"id"`
	Parameters  InsertParameters  `json:"parameters"`
	FocalLength float64           `json:"focal_length"`
	BetaCenter  float64           `json:"beta_center"`
	Positions   []float64         `json:"s"`
	Beta        []float64         `json:"beta"`
	KNLL        []float64         `json:"knll"`
	CNLL        []float64         `json:"cnll"`
	Elements    []string          `json:"elements"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// ValidationResult is the envelope emitted by the CLI when comparing
// external beta samples against a computed profile.
type ValidationResult struct {
	ID         string            `json:"id"`
	Parameters InsertParameters  `json:"parameters"`
	Tolerance  float64           `json:"tolerance"`
	Compatible bool              `json:"compatible"`
	NumSamples int               `json:"num_samples"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NewResultID returns a unique identifier for an emitted result.
func NewResultID(kind string) string {
	return fmt.Sprintf("%s_%s", kind, uuid.NewString())
}

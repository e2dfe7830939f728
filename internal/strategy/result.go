package strategy

import (
	"fmt"
	"time"

	"github.com/timlawrenz/fluffy-train-sub000/internal/domain"
)

// DeclineKind classifies soft "no selection" outcomes. They are expected,
// frequent, and must be distinguishable from faults by batch schedulers, so
// they travel as values rather than errors.
type DeclineKind string

const (
	DeclineFrequencyCap DeclineKind = "frequency_cap"
	DeclineNoClusters   DeclineKind = "no_clusters"
	DeclineNoPhotos     DeclineKind = "no_photos"
)

type Decline struct {
	Kind   DeclineKind
	Reason string
}

// Selection is a successful decision: what to post and under which
// parameters.
type Selection struct {
	Photo       *domain.Photo
	Cluster     *domain.Cluster
	OptimalTime time.Time
	Hashtags    []string
	Format      string
}

// Result is either a Selection or a Decline, never both.
type Result struct {
	Selection *Selection
	Decline   *Decline
}

func (r *Result) Declined() bool {
	return r != nil && r.Decline != nil
}

func Selected(sel *Selection) *Result {
	return &Result{Selection: sel}
}

func Declined(kind DeclineKind, format string, args ...any) *Result {
	return &Result{Decline: &Decline{Kind: kind, Reason: fmt.Sprintf(format, args...)}}
}

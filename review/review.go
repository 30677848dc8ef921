// Package review reads and writes the files an operator edits between
// recommending decisions and building the next season.
package review

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rwk-liga/rwk-engine/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var ErrInvalidDecision = errors.New("invalid decision")

// DecisionSet is the reviewable output of one recommendation run.
type DecisionSet struct {
	SourceSeasonId uuid.UUID              `yaml:"sourceSeasonId"`
	GeneratedAt    time.Time              `yaml:"generatedAt"`
	Decisions      []models.DecisionModel `yaml:"decisions"`
}

func WriteDecisions(w io.Writer, set DecisionSet) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("failed to encode decisions: %w", err)
	}
	return enc.Close()
}

// ReadDecisions parses a decision file and rejects decisions that could not be applied.
func ReadDecisions(r io.Reader) (DecisionSet, error) {
	var set DecisionSet
	if err := yaml.NewDecoder(r).Decode(&set); err != nil && !errors.Is(err, io.EOF) {
		return DecisionSet{}, fmt.Errorf("failed to decode decisions: %w", err)
	}

	seen := make(map[uuid.UUID]bool, len(set.Decisions))
	for i, d := range set.Decisions {
		if d.TeamId == uuid.Nil {
			return DecisionSet{}, fmt.Errorf("%w: entry %d has no team id", ErrInvalidDecision, i+1)
		}
		if seen[d.TeamId] {
			return DecisionSet{}, fmt.Errorf("%w: team %s appears more than once", ErrInvalidDecision, d.TeamId)
		}
		seen[d.TeamId] = true

		switch d.Action {
		case models.ActionStay, models.ActionCompare:
		case models.ActionPromote, models.ActionRelegate:
			if d.TargetLeagueName == "" {
				return DecisionSet{}, fmt.Errorf("%w: team %q should %s but has no target league", ErrInvalidDecision, d.TeamName, d.Action)
			}
		default:
			return DecisionSet{}, fmt.Errorf("%w: team %q has unknown action %q", ErrInvalidDecision, d.TeamName, d.Action)
		}
	}
	return set, nil
}

func ReadOverrides(r io.Reader) (models.Overrides, error) {
	var o models.Overrides
	if err := yaml.NewDecoder(r).Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return models.Overrides{}, fmt.Errorf("failed to decode overrides: %w", err)
	}
	for id, size := range o.TargetLeagueSize {
		if size < 0 {
			return models.Overrides{}, fmt.Errorf("target size of league %s must not be negative, got %d", id, size)
		}
	}
	for id, slots := range o.AdditionalPromotionSlots {
		if slots < 0 {
			return models.Overrides{}, fmt.Errorf("promotion slots of league %s must not be negative, got %d", id, slots)
		}
	}
	return o, nil
}

// Confirmed returns the decisions the operator has signed off.
func Confirmed(decisions []models.DecisionModel) []models.DecisionModel {
	out := make([]models.DecisionModel, 0, len(decisions))
	for _, d := range decisions {
		if d.Confirmed {
			out = append(out, d)
		}
	}
	return out
}

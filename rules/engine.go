// Package rules applies the RWK-Ordnung promotion and relegation rules to a
// league table. It works on standings that were already computed and never
// reads from storage.
package rules

import (
	"fmt"

	"github.com/rwk-liga/rwk-engine/models"
)

// Tier is an adjacent league together with its table.
// A Tier with an empty table means the league exists but has no usable results.
type Tier struct {
	League    models.LeagueModel
	Standings []models.StandingsModel
}

type Input struct {
	League    models.LeagueModel
	Standings []models.StandingsModel
	Higher    *Tier
	Lower     *Tier
	Overrides models.Overrides
}

type rule func(e *evaluation, s models.StandingsModel) (models.DecisionModel, bool)

// ordered by priority; the first rule that applies decides
var ruleChain = []rule{
	withdrawnRule,
	exemptRule,
	championRule,
	lastPlaceRule,
	runnerUpRule,
	secondToLastRule,
	sizeReductionRule,
	extraPromotionRule,
}

type evaluation struct {
	in             Input
	count          int
	sizeReduction  int
	targetSize     int
	promotionSlots int
}

// Decide returns one unconfirmed decision per team of in.Standings, in table order.
func Decide(in Input) []models.DecisionModel {
	e := newEvaluation(in)
	decisions := make([]models.DecisionModel, 0, e.count)
	for _, s := range in.Standings {
		decisions = append(decisions, e.decide(s))
	}
	return decisions
}

func newEvaluation(in Input) *evaluation {
	e := &evaluation{in: in, count: len(in.Standings), targetSize: len(in.Standings)}
	if target, ok := in.Overrides.TargetLeagueSize[in.League.LeagueId]; ok && target >= 0 && target < e.count {
		e.targetSize = target
		e.sizeReduction = e.count - target
	}
	e.promotionSlots = max(in.Overrides.AdditionalPromotionSlots[in.League.LeagueId], 0)
	return e
}

func (e *evaluation) decide(s models.StandingsModel) models.DecisionModel {
	for _, r := range ruleChain {
		if d, ok := r(e, s); ok {
			d.Confirmed = false
			return d
		}
	}
	return e.stay(s, "remains in current league")
}

// higher is nil when no promotion target exists for this league.
func (e *evaluation) higher() *Tier {
	if e.in.League.IsTopTier() {
		return nil
	}
	return e.in.Higher
}

func (e *evaluation) lower() *Tier {
	if e.in.League.IsBottomTier() {
		return nil
	}
	return e.in.Lower
}

func (e *evaluation) base(s models.StandingsModel) models.DecisionModel {
	return models.DecisionModel{
		TeamId:            s.TeamId,
		TeamName:          s.TeamName,
		ClubName:          s.ClubName,
		CurrentLeagueName: e.in.League.Name,
		CurrentPosition:   s.Position,
	}
}

func (e *evaluation) stay(s models.StandingsModel, reason string) models.DecisionModel {
	d := e.base(s)
	d.Action = models.ActionStay
	d.Reason = reason
	return d
}

func (e *evaluation) move(s models.StandingsModel, action models.DecisionAction, target models.LeagueModel, reason string) models.DecisionModel {
	d := e.base(s)
	d.Action = action
	d.TargetLeagueName = target.Name
	d.Reason = reason
	return d
}

func withdrawnRule(e *evaluation, s models.StandingsModel) (models.DecisionModel, bool) {
	if !e.in.Overrides.IsWithdrawn(s.TeamId) {
		return models.DecisionModel{}, false
	}
	lower := e.lower()
	if lower == nil {
		return e.stay(s, fmt.Sprintf("%s withdrew from the competition; no lower league below %s, remains", s.TeamName, e.in.League.Name)), true
	}
	return e.move(s, models.ActionRelegate, lower.League,
		fmt.Sprintf("%s withdrew from the competition; relegated from %s to %s", s.TeamName, e.in.League.Name, lower.League.Name)), true
}

func exemptRule(e *evaluation, s models.StandingsModel) (models.DecisionModel, bool) {
	if !e.in.League.IsExempt() {
		return models.DecisionModel{}, false
	}
	return e.stay(s, fmt.Sprintf("%s is an open class league without promotion or relegation; remains at position %d", e.in.League.Name, s.Position)), true
}

func championRule(e *evaluation, s models.StandingsModel) (models.DecisionModel, bool) {
	if s.Position != 1 {
		return models.DecisionModel{}, false
	}
	higher := e.higher()
	if higher == nil {
		return e.stay(s, fmt.Sprintf("winner of %s with %d rings; top tier, no higher league", e.in.League.Name, s.TotalScore)), true
	}
	return e.move(s, models.ActionPromote, higher.League,
		fmt.Sprintf("winner of %s with %d rings; promoted to %s", e.in.League.Name, s.TotalScore, higher.League.Name)), true
}

func lastPlaceRule(e *evaluation, s models.StandingsModel) (models.DecisionModel, bool) {
	if s.Position != e.count {
		return models.DecisionModel{}, false
	}
	if e.in.League.IsBottomTier() {
		return e.stay(s, fmt.Sprintf("last place (%d of %d) in %s with %d rings; lowest league, no relegation", s.Position, e.count, e.in.League.Name, s.TotalScore)), true
	}
	lower := e.lower()
	if lower == nil {
		return e.stay(s, fmt.Sprintf("last place (%d of %d) in %s with %d rings; no lower league exists", s.Position, e.count, e.in.League.Name, s.TotalScore)), true
	}
	return e.move(s, models.ActionRelegate, lower.League,
		fmt.Sprintf("last place (%d of %d) in %s with %d rings; relegated to %s", s.Position, e.count, e.in.League.Name, s.TotalScore, lower.League.Name)), true
}

// runnerUpRule compares the runner-up with the second-to-last team of the higher league.
func runnerUpRule(e *evaluation, s models.StandingsModel) (models.DecisionModel, bool) {
	higher := e.higher()
	if s.Position != 2 || higher == nil || e.promotionSlots > 0 {
		return models.DecisionModel{}, false
	}
	if len(higher.Standings) < 2 {
		return e.stay(s, fmt.Sprintf("runner-up of %s with %d rings; no standings of %s to compare against, remains in current league",
			e.in.League.Name, s.TotalScore, higher.League.Name)), true
	}

	opponent := higher.Standings[len(higher.Standings)-2]
	cmp := comparisonWith(higher.League, opponent)
	if s.TotalScore > opponent.TotalScore {
		d := e.move(s, models.ActionPromote, higher.League,
			fmt.Sprintf("runner-up %s scored %d rings, more than %s with %d rings (position %d of %s): %d > %d; promoted to %s",
				s.TeamName, s.TotalScore, opponent.TeamName, opponent.TotalScore, opponent.Position, higher.League.Name,
				s.TotalScore, opponent.TotalScore, higher.League.Name))
		d.Comparison = cmp
		return d, true
	}
	d := e.stay(s, fmt.Sprintf("runner-up %s scored %d rings, not more than %s with %d rings (position %d of %s): %d <= %d; remains in %s",
		s.TeamName, s.TotalScore, opponent.TeamName, opponent.TotalScore, opponent.Position, higher.League.Name,
		s.TotalScore, opponent.TotalScore, e.in.League.Name))
	d.Comparison = cmp
	return d, true
}

// secondToLastRule compares the second-to-last team with the runner-up of the lower league.
func secondToLastRule(e *evaluation, s models.StandingsModel) (models.DecisionModel, bool) {
	lower := e.lower()
	if s.Position != e.count-1 || lower == nil {
		return models.DecisionModel{}, false
	}
	if len(lower.Standings) < 2 {
		return e.stay(s, fmt.Sprintf("second-to-last of %s with %d rings; no standings of %s to compare against, remains in current league",
			e.in.League.Name, s.TotalScore, lower.League.Name)), true
	}

	opponent := lower.Standings[1]
	cmp := comparisonWith(lower.League, opponent)
	if s.TotalScore > opponent.TotalScore {
		d := e.stay(s, fmt.Sprintf("%s scored %d rings, more than runner-up %s with %d rings of %s: %d > %d; remains in %s",
			s.TeamName, s.TotalScore, opponent.TeamName, opponent.TotalScore, lower.League.Name,
			s.TotalScore, opponent.TotalScore, e.in.League.Name))
		d.Comparison = cmp
		return d, true
	}
	d := e.move(s, models.ActionRelegate, lower.League,
		fmt.Sprintf("%s scored %d rings, not more than runner-up %s with %d rings of %s: %d <= %d; relegated to %s",
			s.TeamName, s.TotalScore, opponent.TeamName, opponent.TotalScore, lower.League.Name,
			s.TotalScore, opponent.TotalScore, lower.League.Name))
	d.Comparison = cmp
	return d, true
}

func sizeReductionRule(e *evaluation, s models.StandingsModel) (models.DecisionModel, bool) {
	if e.sizeReduction <= 0 || s.Position <= e.count-e.sizeReduction {
		return models.DecisionModel{}, false
	}
	lower := e.lower()
	if lower == nil {
		return e.stay(s, fmt.Sprintf("%s shrinks by %d teams to %d; position %d of %d would be relegated but no lower league exists",
			e.in.League.Name, e.sizeReduction, e.targetSize, s.Position, e.count)), true
	}
	return e.move(s, models.ActionRelegate, lower.League,
		fmt.Sprintf("%s shrinks by %d teams to %d; position %d of %d relegated to %s",
			e.in.League.Name, e.sizeReduction, e.targetSize, s.Position, e.count, lower.League.Name)), true
}

func extraPromotionRule(e *evaluation, s models.StandingsModel) (models.DecisionModel, bool) {
	higher := e.higher()
	if e.promotionSlots <= 1 || higher == nil || s.Position > 1+e.promotionSlots {
		return models.DecisionModel{}, false
	}
	return e.move(s, models.ActionPromote, higher.League,
		fmt.Sprintf("%d additional promotion slots in %s; position %d of %s with %d rings promoted",
			e.promotionSlots, higher.League.Name, s.Position, e.in.League.Name, s.TotalScore)), true
}

func comparisonWith(league models.LeagueModel, s models.StandingsModel) *models.Comparison {
	return &models.Comparison{
		TeamId:     s.TeamId,
		TeamName:   s.TeamName,
		LeagueName: league.Name,
		Position:   s.Position,
		TotalScore: s.TotalScore,
	}
}

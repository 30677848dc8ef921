package rules

import (
	"cmp"
	"slices"

	"github.com/rwk-liga/rwk-engine/models"

	"github.com/google/uuid"
)

// Neighbors finds the leagues directly above and below leagueId in the tier
// ladder. Open class leagues are not part of the ladder: they are skipped and
// have no neighbors themselves.
func Neighbors(leagues []models.LeagueModel, leagueId uuid.UUID) (higher, lower *models.LeagueModel) {
	ladder := make([]models.LeagueModel, 0, len(leagues))
	for _, l := range leagues {
		if !l.IsExempt() {
			ladder = append(ladder, l)
		}
	}
	slices.SortFunc(ladder, func(a, b models.LeagueModel) int {
		return cmp.Compare(a.Order, b.Order)
	})

	idx := slices.IndexFunc(ladder, func(l models.LeagueModel) bool { return l.LeagueId == leagueId })
	if idx < 0 {
		return nil, nil
	}
	if idx > 0 {
		h := ladder[idx-1]
		higher = &h
	}
	if idx < len(ladder)-1 {
		l := ladder[idx+1]
		lower = &l
	}
	return higher, lower
}

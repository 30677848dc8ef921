// Package builder materializes the next season's leagues and teams from a
// finished season and the operator-confirmed decisions.
package builder

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/rwk-liga/rwk-engine/models"

	"github.com/google/uuid"
)

const PlaceholderClubName = "Unknown club"

type Target struct {
	CompetitionYear int
	DisciplineType  models.DisciplineType
	DisplayName     string
}

type Input struct {
	SourceSeason models.SeasonModel
	Leagues      []models.LeagueModel
	Teams        []models.TeamModel
	ClubNames    map[uuid.UUID]string
	Target       Target
	// only confirmed decisions move teams
	Decisions  []models.DecisionModel
	NewClubIds []uuid.UUID
}

// SeasonGraph is everything that has to be written for a new season, in one batch.
type SeasonGraph struct {
	Season  models.SeasonModel
	Leagues []models.LeagueModel
	Teams   []models.TeamModel
}

type leagueIndex struct {
	byOldId map[uuid.UUID]models.LeagueModel
	byName  map[string]models.LeagueModel
	lowest  models.LeagueModel
}

// Build computes the new season graph. It does not write anything.
func Build(in Input) (SeasonGraph, error) {
	if in.Target.CompetitionYear <= 0 || !in.Target.DisciplineType.Valid() {
		return SeasonGraph{}, fmt.Errorf("%w: year %d, discipline %q", ErrInvalidTarget, in.Target.CompetitionYear, in.Target.DisciplineType)
	}
	if len(in.Leagues) == 0 {
		return SeasonGraph{}, structural("season %s has no leagues; new clubs have no lowest league to start in", in.SourceSeason.SeasonId)
	}

	season := models.SeasonModel{
		SeasonId:        uuid.New(),
		CompetitionYear: in.Target.CompetitionYear,
		DisciplineType:  in.Target.DisciplineType,
		Status:          models.SeasonPlanned,
		DisplayName:     in.Target.DisplayName,
	}
	if season.DisplayName == "" {
		season.DisplayName = models.DefaultSeasonName(season.CompetitionYear, season.DisciplineType)
	}

	leagues, index, err := cloneLeagues(season.SeasonId, in.Leagues)
	if err != nil {
		return SeasonGraph{}, err
	}

	newClubs := make(map[uuid.UUID]bool, len(in.NewClubIds))
	for _, id := range in.NewClubIds {
		newClubs[id] = true
	}
	moves := confirmedMoves(in.Decisions)

	teams := make([]models.TeamModel, 0, len(in.Teams)+len(in.NewClubIds))
	clubsWithTeam := make(map[uuid.UUID]bool, len(in.Teams))
	for _, team := range in.Teams {
		target, err := index.targetFor(team, newClubs[team.ClubId], moves)
		if err != nil {
			return SeasonGraph{}, err
		}
		clubsWithTeam[team.ClubId] = true
		teams = append(teams, models.TeamModel{
			TeamId:     uuid.New(),
			ClubId:     team.ClubId,
			LeagueId:   target.LeagueId,
			SeasonId:   season.SeasonId,
			Name:       team.Name,
			ShooterIds: slices.Clone(team.ShooterIds),
			IsNewClub:  newClubs[team.ClubId],
		})
	}

	for _, clubId := range in.NewClubIds {
		if clubsWithTeam[clubId] {
			continue
		}
		clubsWithTeam[clubId] = true
		teams = append(teams, models.TeamModel{
			TeamId:     uuid.New(),
			ClubId:     clubId,
			LeagueId:   index.lowest.LeagueId,
			SeasonId:   season.SeasonId,
			Name:       firstTeamName(in.ClubNames, clubId),
			ShooterIds: []uuid.UUID{},
			IsNewClub:  true,
		})
	}

	return SeasonGraph{Season: season, Leagues: leagues, Teams: teams}, nil
}

func cloneLeagues(seasonId uuid.UUID, source []models.LeagueModel) ([]models.LeagueModel, leagueIndex, error) {
	sorted := slices.Clone(source)
	slices.SortFunc(sorted, func(a, b models.LeagueModel) int {
		return cmp.Compare(a.Order, b.Order)
	})

	index := leagueIndex{
		byOldId: make(map[uuid.UUID]models.LeagueModel, len(sorted)),
		byName:  make(map[string]models.LeagueModel, len(sorted)),
	}
	leagues := make([]models.LeagueModel, 0, len(sorted))
	for i, old := range sorted {
		if i > 0 && sorted[i-1].Order == old.Order {
			return nil, leagueIndex{}, structural("leagues %q and %q share order %d", sorted[i-1].Name, old.Name, old.Order)
		}
		if _, dup := index.byName[old.Name]; dup {
			return nil, leagueIndex{}, structural("league name %q is used twice", old.Name)
		}
		classification := old.Classification
		if !classification.Valid() {
			classification = models.LeagueNormal
		}
		clone := models.LeagueModel{
			LeagueId:       uuid.New(),
			SeasonId:       seasonId,
			Name:           old.Name,
			Order:          old.Order,
			Classification: classification,
		}
		leagues = append(leagues, clone)
		index.byOldId[old.LeagueId] = clone
		index.byName[clone.Name] = clone
	}
	index.lowest = lowestLeague(leagues)
	return leagues, index, nil
}

// lowestLeague picks where new clubs start: the league flagged as bottom tier,
// else the lowest non-exempt league, else the lowest league at all.
// leagues must be sorted by order.
func lowestLeague(leagues []models.LeagueModel) models.LeagueModel {
	for i := len(leagues) - 1; i >= 0; i-- {
		if leagues[i].IsBottomTier() {
			return leagues[i]
		}
	}
	for i := len(leagues) - 1; i >= 0; i-- {
		if !leagues[i].IsExempt() {
			return leagues[i]
		}
	}
	return leagues[len(leagues)-1]
}

func confirmedMoves(decisions []models.DecisionModel) map[uuid.UUID]models.DecisionModel {
	moves := make(map[uuid.UUID]models.DecisionModel, len(decisions))
	for _, d := range decisions {
		if d.Confirmed && d.Action.Moves() {
			moves[d.TeamId] = d
		}
	}
	return moves
}

func (idx leagueIndex) targetFor(team models.TeamModel, newClub bool, moves map[uuid.UUID]models.DecisionModel) (models.LeagueModel, error) {
	if newClub {
		return idx.lowest, nil
	}
	if d, ok := moves[team.TeamId]; ok {
		target, ok := idx.byName[d.TargetLeagueName]
		if !ok {
			return models.LeagueModel{}, structural("team %q should %s to league %q which does not exist", team.Name, d.Action, d.TargetLeagueName)
		}
		return target, nil
	}
	current, ok := idx.byOldId[team.LeagueId]
	if !ok {
		return models.LeagueModel{}, structural("team %q belongs to league %s which is not part of the source season", team.Name, team.LeagueId)
	}
	return current, nil
}

func firstTeamName(clubNames map[uuid.UUID]string, clubId uuid.UUID) string {
	name, ok := clubNames[clubId]
	if !ok || name == "" {
		name = PlaceholderClubName
	}
	return name + " I"
}

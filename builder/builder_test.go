package builder

import (
	"errors"
	"testing"

	"github.com/rwk-liga/rwk-engine/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type source struct {
	season  models.SeasonModel
	top     models.LeagueModel
	middle  models.LeagueModel
	bottom  models.LeagueModel
	pistol  models.LeagueModel
	clubs   map[uuid.UUID]string
	teams   []models.TeamModel
	byName  map[string]models.TeamModel
	targets Target
}

func newSource() source {
	seasonId := uuid.New()
	s := source{
		season: models.SeasonModel{SeasonId: seasonId, CompetitionYear: 2026, DisciplineType: models.DisciplineAirRifle, Status: models.SeasonClosed},
		top:    models.LeagueModel{LeagueId: uuid.New(), SeasonId: seasonId, Name: "Bezirksoberliga", Order: 1, Classification: models.LeagueTopTier},
		middle: models.LeagueModel{LeagueId: uuid.New(), SeasonId: seasonId, Name: "Kreisoberliga", Order: 2, Classification: models.LeagueNormal},
		bottom: models.LeagueModel{LeagueId: uuid.New(), SeasonId: seasonId, Name: "Kreisklasse", Order: 3, Classification: models.LeagueBottomTier},
		pistol: models.LeagueModel{LeagueId: uuid.New(), SeasonId: seasonId, Name: "Pistole", Order: 4, Classification: models.LeagueExemptOpenClass},
		clubs:  map[uuid.UUID]string{},
		byName: map[string]models.TeamModel{},
		targets: Target{
			CompetitionYear: 2027,
			DisciplineType:  models.DisciplineAirRifle,
		},
	}
	s.addTeam("Tell I", s.top)
	s.addTeam("Diana I", s.middle)
	s.addTeam("Hubertus I", s.middle)
	s.addTeam("Eichenlaub I", s.bottom)
	s.addTeam("Freischütz P", s.pistol)
	return s
}

func (s *source) addTeam(name string, league models.LeagueModel) {
	clubId := uuid.New()
	s.clubs[clubId] = "SV " + name
	team := models.TeamModel{
		TeamId:     uuid.New(),
		ClubId:     clubId,
		LeagueId:   league.LeagueId,
		SeasonId:   s.season.SeasonId,
		Name:       name,
		ShooterIds: []uuid.UUID{uuid.New(), uuid.New(), uuid.New()},
	}
	s.teams = append(s.teams, team)
	s.byName[name] = team
}

func (s source) input() Input {
	return Input{
		SourceSeason: s.season,
		Leagues:      []models.LeagueModel{s.pistol, s.bottom, s.top, s.middle},
		Teams:        s.teams,
		ClubNames:    s.clubs,
		Target:       s.targets,
	}
}

func leagueNameOf(t *testing.T, g SeasonGraph, team models.TeamModel) string {
	t.Helper()
	for _, l := range g.Leagues {
		if l.LeagueId == team.LeagueId {
			return l.Name
		}
	}
	require.Failf(t, "league not in graph", "team %s", team.Name)
	return ""
}

func teamByName(t *testing.T, g SeasonGraph, name string) models.TeamModel {
	t.Helper()
	for _, team := range g.Teams {
		if team.Name == name {
			return team
		}
	}
	require.Failf(t, "team not in graph", "%s", name)
	return models.TeamModel{}
}

func TestBuild_ClonesLeaguesAndKeepsTeams(t *testing.T) {
	s := newSource()

	g, err := Build(s.input())

	require.NoError(t, err)
	assert.Equal(t, models.SeasonPlanned, g.Season.Status)
	assert.Equal(t, 2027, g.Season.CompetitionYear)
	assert.Equal(t, "RWK LG 2027", g.Season.DisplayName)
	assert.NotEqual(t, s.season.SeasonId, g.Season.SeasonId)

	require.Len(t, g.Leagues, 4)
	for i, l := range g.Leagues {
		assert.Equal(t, i+1, l.Order)
		assert.Equal(t, g.Season.SeasonId, l.SeasonId)
	}
	assert.Equal(t, "Bezirksoberliga", g.Leagues[0].Name)
	assert.Equal(t, models.LeagueTopTier, g.Leagues[0].Classification)
	assert.Equal(t, models.LeagueExemptOpenClass, g.Leagues[3].Classification)

	require.Len(t, g.Teams, len(s.teams))
	for _, old := range s.teams {
		team := teamByName(t, g, old.Name)
		assert.NotEqual(t, old.TeamId, team.TeamId)
		assert.Equal(t, old.ClubId, team.ClubId)
		assert.Equal(t, old.ShooterIds, team.ShooterIds)
		assert.Equal(t, g.Season.SeasonId, team.SeasonId)
		assert.False(t, team.IsNewClub)
	}
	assert.Equal(t, "Kreisoberliga", leagueNameOf(t, g, teamByName(t, g, "Diana I")))
	assert.Equal(t, "Pistole", leagueNameOf(t, g, teamByName(t, g, "Freischütz P")))
}

func TestBuild_AppliesOnlyConfirmedDecisions(t *testing.T) {
	s := newSource()
	in := s.input()
	in.Decisions = []models.DecisionModel{
		{TeamId: s.byName["Diana I"].TeamId, Action: models.ActionPromote, TargetLeagueName: "Bezirksoberliga", Confirmed: true},
		{TeamId: s.byName["Tell I"].TeamId, Action: models.ActionRelegate, TargetLeagueName: "Kreisoberliga", Confirmed: true},
		{TeamId: s.byName["Hubertus I"].TeamId, Action: models.ActionRelegate, TargetLeagueName: "Kreisklasse", Confirmed: false},
		{TeamId: s.byName["Eichenlaub I"].TeamId, Action: models.ActionCompare, TargetLeagueName: "Kreisoberliga", Confirmed: true},
	}

	g, err := Build(in)

	require.NoError(t, err)
	assert.Equal(t, "Bezirksoberliga", leagueNameOf(t, g, teamByName(t, g, "Diana I")))
	assert.Equal(t, "Kreisoberliga", leagueNameOf(t, g, teamByName(t, g, "Tell I")))
	assert.Equal(t, "Kreisoberliga", leagueNameOf(t, g, teamByName(t, g, "Hubertus I")))
	assert.Equal(t, "Kreisklasse", leagueNameOf(t, g, teamByName(t, g, "Eichenlaub I")))
}

func TestBuild_SynthesizesTeamForNewClub(t *testing.T) {
	s := newSource()
	clubX := uuid.New()
	s.clubs[clubX] = "SG Waldeck"
	in := s.input()
	in.NewClubIds = []uuid.UUID{clubX}

	g, err := Build(in)

	require.NoError(t, err)
	var synthesized []models.TeamModel
	for _, team := range g.Teams {
		if team.ClubId == clubX {
			synthesized = append(synthesized, team)
		}
	}
	require.Len(t, synthesized, 1)
	assert.Equal(t, "SG Waldeck I", synthesized[0].Name)
	assert.True(t, synthesized[0].IsNewClub)
	assert.Empty(t, synthesized[0].ShooterIds)
	// bottom tier flag wins over the exempt pistol league with a higher order
	assert.Equal(t, "Kreisklasse", leagueNameOf(t, g, synthesized[0]))
}

func TestBuild_NewClubWithExistingTeamIgnoresDecision(t *testing.T) {
	s := newSource()
	diana := s.byName["Diana I"]
	in := s.input()
	in.NewClubIds = []uuid.UUID{diana.ClubId}
	in.Decisions = []models.DecisionModel{
		{TeamId: diana.TeamId, Action: models.ActionPromote, TargetLeagueName: "Bezirksoberliga", Confirmed: true},
	}

	g, err := Build(in)

	require.NoError(t, err)
	require.Len(t, g.Teams, len(s.teams))
	team := teamByName(t, g, "Diana I")
	assert.True(t, team.IsNewClub)
	assert.Equal(t, "Kreisklasse", leagueNameOf(t, g, team))
}

func TestBuild_UnknownClubNameUsesPlaceholder(t *testing.T) {
	s := newSource()
	in := s.input()
	in.NewClubIds = []uuid.UUID{uuid.New()}

	g, err := Build(in)

	require.NoError(t, err)
	team := teamByName(t, g, "Unknown club I")
	assert.True(t, team.IsNewClub)
}

func TestBuild_LowestLeagueWithoutBottomFlag(t *testing.T) {
	s := newSource()
	s.bottom.Classification = models.LeagueNormal
	in := s.input()
	in.Teams = nil
	in.NewClubIds = []uuid.UUID{uuid.New()}

	g, err := Build(in)

	require.NoError(t, err)
	require.Len(t, g.Teams, 1)
	assert.Equal(t, "Kreisklasse", leagueNameOf(t, g, g.Teams[0]))
}

func TestBuild_NoLeaguesIsStructuralError(t *testing.T) {
	s := newSource()
	in := s.input()
	in.Leagues = nil
	in.NewClubIds = []uuid.UUID{uuid.New()}

	_, err := Build(in)

	require.Error(t, err)
	var structErr *StructuralConfigurationError
	assert.True(t, errors.As(err, &structErr))
	assert.ErrorIs(t, err, ErrStructuralConfiguration)
}

func TestBuild_UnknownTargetLeagueIsStructuralError(t *testing.T) {
	s := newSource()
	in := s.input()
	in.Decisions = []models.DecisionModel{
		{TeamId: s.byName["Diana I"].TeamId, Action: models.ActionPromote, TargetLeagueName: "Landesliga", Confirmed: true},
	}

	_, err := Build(in)

	assert.ErrorIs(t, err, ErrStructuralConfiguration)
	assert.Contains(t, err.Error(), "Landesliga")
}

func TestBuild_DuplicateOrderIsStructuralError(t *testing.T) {
	s := newSource()
	s.middle.Order = 1

	_, err := Build(s.input())

	assert.ErrorIs(t, err, ErrStructuralConfiguration)
}

func TestBuild_InvalidTarget(t *testing.T) {
	s := newSource()
	in := s.input()
	in.Target.DisciplineType = "archery"

	_, err := Build(in)

	assert.ErrorIs(t, err, ErrInvalidTarget)
}

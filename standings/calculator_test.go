package standings

import (
	"testing"
	"time"

	"github.com/rwk-liga/rwk-engine/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)

type fixture struct {
	league    models.LeagueModel
	teams     []models.TeamModel
	clubNames map[uuid.UUID]string
}

func newFixture(teamNames ...string) fixture {
	league := models.LeagueModel{LeagueId: uuid.New(), Name: "Kreisliga", Order: 2, Classification: models.LeagueNormal}
	f := fixture{league: league, clubNames: map[uuid.UUID]string{}}
	for _, name := range teamNames {
		clubId := uuid.New()
		f.clubNames[clubId] = "SV " + name
		f.teams = append(f.teams, models.TeamModel{
			TeamId:   uuid.New(),
			ClubId:   clubId,
			LeagueId: league.LeagueId,
			Name:     name,
		})
	}
	return f
}

func record(team models.TeamModel, shooter uuid.UUID, round, rings int, offset time.Duration) models.ScoreRecord {
	return models.ScoreRecord{
		RecordId:    uuid.New(),
		ShooterId:   shooter,
		TeamId:      team.TeamId,
		LeagueId:    team.LeagueId,
		RoundNumber: round,
		RingTotal:   rings,
		EnteredAt:   baseTime.Add(offset),
	}
}

func TestCalculate_NoTeams(t *testing.T) {
	f := newFixture()

	table := Calculate(f.league, nil, f.clubNames, nil, 4)

	require.NotNil(t, table)
	assert.Empty(t, table)
}

func TestCalculate_LatestEntryWins(t *testing.T) {
	f := newFixture("Eichenlaub I")
	team := f.teams[0]
	shooter := uuid.New()

	records := []models.ScoreRecord{
		record(team, shooter, 3, 90, time.Minute),
		record(team, shooter, 3, 95, 2*time.Minute),
	}

	table := Calculate(f.league, f.teams, f.clubNames, records, 4)

	require.Len(t, table, 1)
	assert.Equal(t, 95, table[0].TotalScore)
	assert.Equal(t, []int{0, 0, 95, 0}, table[0].RoundScores)
	assert.Equal(t, 1, table[0].RoundsPlayed)
}

func TestCalculate_LatestEntryWinsRegardlessOfInputOrder(t *testing.T) {
	f := newFixture("Eichenlaub I")
	team := f.teams[0]
	shooter := uuid.New()

	records := []models.ScoreRecord{
		record(team, shooter, 1, 280, 5*time.Minute),
		record(team, shooter, 1, 250, time.Minute),
	}

	table := Calculate(f.league, f.teams, f.clubNames, records, 4)

	assert.Equal(t, 280, table[0].TotalScore)
}

func TestCalculate_EqualTimestampsPreferGreaterRecordId(t *testing.T) {
	f := newFixture("Eichenlaub I")
	team := f.teams[0]
	shooter := uuid.New()

	low := record(team, shooter, 1, 270, 0)
	low.RecordId = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	high := record(team, shooter, 1, 275, 0)
	high.RecordId = uuid.MustParse("00000000-0000-0000-0000-000000000002")

	forward := Calculate(f.league, f.teams, f.clubNames, []models.ScoreRecord{low, high}, 4)
	backward := Calculate(f.league, f.teams, f.clubNames, []models.ScoreRecord{high, low}, 4)

	assert.Equal(t, 275, forward[0].TotalScore)
	assert.Equal(t, 275, backward[0].TotalScore)
}

func TestCalculate_SumsShootersPerRound(t *testing.T) {
	f := newFixture("Tell I")
	team := f.teams[0]
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	records := []models.ScoreRecord{
		record(team, a, 1, 281, 0),
		record(team, b, 1, 275, 0),
		record(team, c, 1, 290, 0),
		record(team, a, 2, 283, 0),
		record(team, b, 2, 279, 0),
	}

	table := Calculate(f.league, f.teams, f.clubNames, records, 4)

	assert.Equal(t, []int{846, 562, 0, 0}, table[0].RoundScores)
	assert.Equal(t, 1408, table[0].TotalScore)
	assert.Equal(t, 2, table[0].RoundsPlayed)
	require.NotNil(t, table[0].AverageScore)
	assert.InDelta(t, 704.0, *table[0].AverageScore, 0.0001)
}

func TestCalculate_ZeroRoundIsNotPlayed(t *testing.T) {
	f := newFixture("Tell I")
	team := f.teams[0]
	shooter := uuid.New()

	records := []models.ScoreRecord{
		record(team, shooter, 1, 280, 0),
		record(team, shooter, 2, 0, 0),
		record(team, shooter, 3, 290, 0),
	}

	table := Calculate(f.league, f.teams, f.clubNames, records, 4)

	assert.Equal(t, 2, table[0].RoundsPlayed)
	require.NotNil(t, table[0].AverageScore)
	assert.InDelta(t, 285.0, *table[0].AverageScore, 0.0001)
}

func TestCalculate_TeamWithoutResultsRanksLast(t *testing.T) {
	f := newFixture("Silent I", "Hubertus I", "Diana I")
	silent, hubertus, diana := f.teams[0], f.teams[1], f.teams[2]

	records := []models.ScoreRecord{
		record(hubertus, uuid.New(), 1, 270, 0),
		record(diana, uuid.New(), 1, 280, 0),
	}

	table := Calculate(f.league, f.teams, f.clubNames, records, 4)

	require.Len(t, table, 3)
	assert.Equal(t, diana.TeamId, table[0].TeamId)
	assert.Equal(t, hubertus.TeamId, table[1].TeamId)
	assert.Equal(t, silent.TeamId, table[2].TeamId)
	assert.Equal(t, 0, table[2].TotalScore)
	assert.Equal(t, 0, table[2].RoundsPlayed)
	assert.Nil(t, table[2].AverageScore)
}

func TestCalculate_PositionsArePermutation(t *testing.T) {
	f := newFixture("A", "B", "C", "D", "E")
	var records []models.ScoreRecord
	for i, team := range f.teams {
		// TWO TIES ON PURPOSE
		records = append(records, record(team, uuid.New(), 1, 250+(i/2)*10, 0))
	}

	table := Calculate(f.league, f.teams, f.clubNames, records, 4)

	seen := map[int]bool{}
	for _, s := range table {
		seen[s.Position] = true
	}
	for p := 1; p <= len(f.teams); p++ {
		assert.True(t, seen[p], "position %d missing", p)
	}
}

func TestCalculate_TiesKeepInputOrder(t *testing.T) {
	f := newFixture("First", "Second")
	records := []models.ScoreRecord{
		record(f.teams[1], uuid.New(), 1, 280, 0),
		record(f.teams[0], uuid.New(), 1, 280, 0),
	}

	table := Calculate(f.league, f.teams, f.clubNames, records, 4)

	assert.Equal(t, "First", table[0].TeamName)
	assert.Equal(t, 1, table[0].Position)
	assert.Equal(t, "Second", table[1].TeamName)
	assert.Equal(t, 2, table[1].Position)
}

func TestCalculate_IgnoresForeignTeamsAndOutOfRangeRounds(t *testing.T) {
	f := newFixture("Tell I")
	team := f.teams[0]
	stranger := models.TeamModel{TeamId: uuid.New(), LeagueId: f.league.LeagueId}

	records := []models.ScoreRecord{
		record(team, uuid.New(), 1, 280, 0),
		record(team, uuid.New(), 5, 999, 0),
		record(team, uuid.New(), 0, 999, 0),
		record(stranger, uuid.New(), 1, 300, 0),
	}

	table := Calculate(f.league, f.teams, f.clubNames, records, 4)

	require.Len(t, table, 1)
	assert.Equal(t, 280, table[0].TotalScore)
}

func TestCalculate_MissingClubNameUsesPlaceholder(t *testing.T) {
	f := newFixture("Tell I")

	table := Calculate(f.league, f.teams, map[uuid.UUID]string{}, nil, 4)

	assert.Equal(t, UnknownClubName, table[0].ClubName)
	assert.Equal(t, "Kreisliga", table[0].LeagueName)
}

func TestCalculate_Deterministic(t *testing.T) {
	f := newFixture("A", "B", "C", "D")
	shooters := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	var records []models.ScoreRecord
	for i, team := range f.teams {
		for round := 1; round <= 4; round++ {
			records = append(records,
				record(team, shooters[i], round, 260+round+i, time.Duration(round)*time.Minute),
				record(team, shooters[i], round, 250+round, 0),
			)
		}
	}

	first := Calculate(f.league, f.teams, f.clubNames, records, 4)
	second := Calculate(f.league, f.teams, f.clubNames, records, 4)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("standings differ between runs (-first +second):\n%s", diff)
	}
}

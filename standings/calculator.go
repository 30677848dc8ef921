// Package standings turns raw per-shooter score records into a ranked league table.
package standings

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/rwk-liga/rwk-engine/models"

	"github.com/google/uuid"
)

const UnknownClubName = "Unknown club"

type shooterRound struct {
	shooterId uuid.UUID
	round     int
}

// teamRounds holds one team's aggregated ring totals, indexed by round number - 1.
type teamRounds map[uuid.UUID][]int

// Calculate builds the league table for one league and season.
//
// Every team in teams gets exactly one line, even without any records.
// Records of teams that are not in teams are ignored, as are records whose
// round number lies outside 1..roundCount.
func Calculate(
	league models.LeagueModel,
	teams []models.TeamModel,
	clubNames map[uuid.UUID]string,
	records []models.ScoreRecord,
	roundCount int,
) []models.StandingsModel {
	if len(teams) == 0 {
		return []models.StandingsModel{}
	}

	rounds := aggregate(teams, latestRecords(records), max(roundCount, 0))

	table := make([]models.StandingsModel, 0, len(teams))
	for _, team := range teams {
		table = append(table, standingFor(league, team, clubNames, rounds[team.TeamId]))
	}

	// STABLE: EQUAL TOTALS KEEP THE ORDER OF THE TEAMS SLICE
	slices.SortStableFunc(table, func(a, b models.StandingsModel) int {
		return cmp.Compare(b.TotalScore, a.TotalScore)
	})
	for i := range table {
		table[i].Position = i + 1
	}
	return table
}

// latestRecords keeps one record per shooter and round: the one entered last.
// Equal timestamps fall back to the greater record id.
func latestRecords(records []models.ScoreRecord) []models.ScoreRecord {
	latest := make(map[shooterRound]models.ScoreRecord, len(records))
	for _, r := range records {
		key := shooterRound{shooterId: r.ShooterId, round: r.RoundNumber}
		current, ok := latest[key]
		if !ok || supersedes(r, current) {
			latest[key] = r
		}
	}

	out := make([]models.ScoreRecord, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	return out
}

func supersedes(candidate, current models.ScoreRecord) bool {
	if !candidate.EnteredAt.Equal(current.EnteredAt) {
		return candidate.EnteredAt.After(current.EnteredAt)
	}
	return bytes.Compare(candidate.RecordId[:], current.RecordId[:]) > 0
}

func aggregate(teams []models.TeamModel, records []models.ScoreRecord, roundCount int) teamRounds {
	rounds := make(teamRounds, len(teams))
	for _, team := range teams {
		rounds[team.TeamId] = make([]int, roundCount)
	}
	for _, r := range records {
		perRound, ok := rounds[r.TeamId]
		if !ok || r.RoundNumber < 1 || r.RoundNumber > roundCount {
			continue
		}
		perRound[r.RoundNumber-1] += r.RingTotal
	}
	return rounds
}

func standingFor(league models.LeagueModel, team models.TeamModel, clubNames map[uuid.UUID]string, perRound []int) models.StandingsModel {
	clubName, ok := clubNames[team.ClubId]
	if !ok || clubName == "" {
		clubName = UnknownClubName
	}

	total, played := 0, 0
	for _, score := range perRound {
		// A ROUND ONLY COUNTS AS PLAYED WITH A POSITIVE TEAM RESULT
		if score > 0 {
			total += score
			played++
		}
	}

	var average *float64
	if played > 0 {
		avg := float64(total) / float64(played)
		average = &avg
	}

	return models.StandingsModel{
		TeamId:       team.TeamId,
		TeamName:     team.Name,
		ClubId:       team.ClubId,
		ClubName:     clubName,
		LeagueId:     league.LeagueId,
		LeagueName:   league.Name,
		TotalScore:   total,
		AverageScore: average,
		RoundsPlayed: played,
		RoundScores:  slices.Clone(perRound),
	}
}

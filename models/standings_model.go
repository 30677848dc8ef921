package models

import "github.com/google/uuid"

// StandingsModel is one team's computed line in a league table.
// It is derived from score records and never stored as the source of truth.
type StandingsModel struct {
	TeamId       uuid.UUID `json:"teamId" yaml:"teamId"`
	TeamName     string    `json:"teamName" yaml:"teamName"`
	ClubId       uuid.UUID `json:"clubId" yaml:"clubId"`
	ClubName     string    `json:"clubName" yaml:"clubName"`
	LeagueId     uuid.UUID `json:"leagueId" yaml:"leagueId"`
	LeagueName   string    `json:"leagueName" yaml:"leagueName"`
	Position     int       `json:"position" yaml:"position"`
	TotalScore   int       `json:"totalScore" yaml:"totalScore"`
	AverageScore *float64  `json:"averageScore" yaml:"averageScore"`
	RoundsPlayed int       `json:"roundsPlayed" yaml:"roundsPlayed"`
	RoundScores  []int     `json:"roundScores" yaml:"roundScores"`
}

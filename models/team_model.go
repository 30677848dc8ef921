package models

import "github.com/google/uuid"

type ClubModel struct {
	ClubId uuid.UUID `db:"club_id" json:"clubId"`
	Name   string    `db:"name" json:"name"`
}

type TeamModel struct {
	TeamId     uuid.UUID   `json:"teamId" yaml:"teamId"`
	ClubId     uuid.UUID   `json:"clubId" yaml:"clubId"`
	LeagueId   uuid.UUID   `json:"leagueId" yaml:"leagueId"`
	SeasonId   uuid.UUID   `json:"seasonId" yaml:"seasonId"`
	Name       string      `json:"name" yaml:"name"`
	ShooterIds []uuid.UUID `json:"shooterIds" yaml:"shooterIds"`
	IsNewClub  bool        `json:"isNewClub" yaml:"isNewClub"`
}

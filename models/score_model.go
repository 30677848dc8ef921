package models

import (
	"time"

	"github.com/google/uuid"
)

// ScoreRecord is one entered result of a shooter in one round.
// Corrections are stored as new records; the latest EnteredAt wins.
type ScoreRecord struct {
	RecordId    uuid.UUID `db:"record_id" json:"recordId"`
	ShooterId   uuid.UUID `db:"shooter_id" json:"shooterId"`
	TeamId      uuid.UUID `db:"team_id" json:"teamId"`
	LeagueId    uuid.UUID `db:"league_id" json:"leagueId"`
	SeasonId    uuid.UUID `db:"season_id" json:"seasonId"`
	RoundNumber int       `db:"round_number" json:"roundNumber"`
	RingTotal   int       `db:"ring_total" json:"ringTotal"`
	EnteredAt   time.Time `db:"entered_at" json:"enteredAt"`
}

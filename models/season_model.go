package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type DisciplineType string

const (
	DisciplineSmallBore       DisciplineType = "small_bore"
	DisciplineSmallBorePistol DisciplineType = "small_bore_pistol"
	DisciplineAirRifle        DisciplineType = "air_rifle"
	DisciplineAirPistol       DisciplineType = "air_pistol"
)

func (d DisciplineType) Valid() bool {
	switch d {
	case DisciplineSmallBore, DisciplineSmallBorePistol, DisciplineAirRifle, DisciplineAirPistol:
		return true
	}
	return false
}

// Label is the short name used on league tables and season display names.
func (d DisciplineType) Label() string {
	switch d {
	case DisciplineSmallBore:
		return "KK"
	case DisciplineSmallBorePistol:
		return "KK-Pistole"
	case DisciplineAirRifle:
		return "LG"
	case DisciplineAirPistol:
		return "LP"
	}
	return string(d)
}

type SeasonStatus string

const (
	SeasonPlanned SeasonStatus = "planned"
	SeasonRunning SeasonStatus = "running"
	SeasonClosed  SeasonStatus = "closed"
)

// CanMoveTo reports whether a season may go from s to next.
// Seasons only move forward: planned -> running -> closed.
func (s SeasonStatus) CanMoveTo(next SeasonStatus) bool {
	switch s {
	case SeasonPlanned:
		return next == SeasonRunning || next == SeasonClosed
	case SeasonRunning:
		return next == SeasonClosed
	}
	return false
}

type SeasonModel struct {
	SeasonId        uuid.UUID      `db:"season_id" json:"seasonId" yaml:"seasonId"`
	CompetitionYear int            `db:"competition_year" json:"competitionYear" yaml:"competitionYear"`
	DisciplineType  DisciplineType `db:"discipline_type" json:"disciplineType" yaml:"disciplineType"`
	Status          SeasonStatus   `db:"status" json:"status" yaml:"status"`
	DisplayName     string         `db:"display_name" json:"displayName" yaml:"displayName"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt" yaml:"-"`
}

// DefaultSeasonName builds names like "RWK LG 2027".
func DefaultSeasonName(year int, discipline DisciplineType) string {
	return fmt.Sprintf("RWK %s %d", discipline.Label(), year)
}

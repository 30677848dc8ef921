package models

import "github.com/google/uuid"

// LeagueClassification marks a league's place in the promotion/relegation ladder.
// It is set when the league is created and never derived from the league name.
type LeagueClassification string

const (
	LeagueNormal          LeagueClassification = "normal"
	LeagueExemptOpenClass LeagueClassification = "exempt_open_class"
	LeagueTopTier         LeagueClassification = "top_tier"
	LeagueBottomTier      LeagueClassification = "bottom_tier"
)

func (c LeagueClassification) Valid() bool {
	switch c {
	case LeagueNormal, LeagueExemptOpenClass, LeagueTopTier, LeagueBottomTier:
		return true
	}
	return false
}

type LeagueModel struct {
	LeagueId       uuid.UUID            `db:"league_id" json:"leagueId" yaml:"leagueId"`
	SeasonId       uuid.UUID            `db:"season_id" json:"seasonId" yaml:"seasonId"`
	Name           string               `db:"name" json:"name" yaml:"name"`
	Order          int                  `db:"league_order" json:"order" yaml:"order"`
	Classification LeagueClassification `db:"classification" json:"classification" yaml:"classification"`
}

func (l LeagueModel) IsExempt() bool {
	return l.Classification == LeagueExemptOpenClass
}

func (l LeagueModel) IsTopTier() bool {
	return l.Classification == LeagueTopTier
}

func (l LeagueModel) IsBottomTier() bool {
	return l.Classification == LeagueBottomTier
}

package models

import "github.com/google/uuid"

type DecisionAction string

const (
	ActionPromote  DecisionAction = "promote"
	ActionRelegate DecisionAction = "relegate"
	ActionStay     DecisionAction = "stay"
	// ActionCompare marks a decision still waiting on a cross-league comparison.
	// It is accepted in review files and treated like stay when a season is built.
	ActionCompare DecisionAction = "compare"
)

// Moves reports whether the action changes the team's league.
func (a DecisionAction) Moves() bool {
	return a == ActionPromote || a == ActionRelegate
}

type Comparison struct {
	TeamId     uuid.UUID `json:"teamId" yaml:"teamId"`
	TeamName   string    `json:"teamName" yaml:"teamName"`
	LeagueName string    `json:"leagueName" yaml:"leagueName"`
	Position   int       `json:"position" yaml:"position"`
	TotalScore int       `json:"totalScore" yaml:"totalScore"`
}

type DecisionModel struct {
	TeamId            uuid.UUID      `json:"teamId" yaml:"teamId"`
	TeamName          string         `json:"teamName" yaml:"teamName"`
	ClubName          string         `json:"clubName" yaml:"clubName"`
	CurrentLeagueName string         `json:"currentLeagueName" yaml:"currentLeagueName"`
	CurrentPosition   int            `json:"currentPosition" yaml:"currentPosition"`
	Action            DecisionAction `json:"action" yaml:"action"`
	TargetLeagueName  string         `json:"targetLeagueName,omitempty" yaml:"targetLeagueName,omitempty"`
	Reason            string         `json:"reason" yaml:"reason"`
	Confirmed         bool           `json:"confirmed" yaml:"confirmed"`
	Comparison        *Comparison    `json:"comparison,omitempty" yaml:"comparison,omitempty"`
}

// Overrides are the operator inputs applied on top of the frozen standings.
type Overrides struct {
	WithdrawnTeamIds []uuid.UUID       `json:"withdrawnTeamIds" yaml:"withdrawnTeamIds"`
	TargetLeagueSize map[uuid.UUID]int `json:"targetLeagueSize" yaml:"targetLeagueSize"`
	// AdditionalPromotionSlots is entered per league by the operator.
	AdditionalPromotionSlots map[uuid.UUID]int `json:"additionalPromotionSlots" yaml:"additionalPromotionSlots"`
	NewClubIds               []uuid.UUID       `json:"newClubIds" yaml:"newClubIds"`
}

func (o Overrides) IsWithdrawn(teamId uuid.UUID) bool {
	for _, id := range o.WithdrawnTeamIds {
		if id == teamId {
			return true
		}
	}
	return false
}

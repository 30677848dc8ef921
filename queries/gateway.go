package queries

import (
	"context"
	"errors"

	"github.com/rwk-liga/rwk-engine/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrSeasonNotFound          = errors.New("season not found")
	ErrSeasonAlreadyExists     = errors.New("season already exists")
	ErrInvalidStatusTransition = errors.New("invalid season status transition")
	ErrInconsistentGraph       = errors.New("inconsistent season graph")
)

type RWKDBConnection struct {
	*sqlx.DB
}

// Gateway is everything the standings and transition engine reads and writes.
type Gateway interface {
	FetchSeason(ctx context.Context, seasonId uuid.UUID) (models.SeasonModel, error)
	FetchLeagues(ctx context.Context, seasonId uuid.UUID) ([]models.LeagueModel, error)
	FetchTeams(ctx context.Context, seasonId uuid.UUID, leagueId *uuid.UUID) ([]models.TeamModel, error)
	FetchScores(ctx context.Context, seasonId uuid.UUID, teamId *uuid.UUID) ([]models.ScoreRecord, error)
	FetchClubNames(ctx context.Context, clubIds []uuid.UUID) (map[uuid.UUID]string, error)
	CommitNewSeason(ctx context.Context, season models.SeasonModel, leagues []models.LeagueModel, teams []models.TeamModel) (uuid.UUID, error)
	UpdateSeasonStatus(ctx context.Context, seasonId uuid.UUID, status models.SeasonStatus) error
	DeleteSeason(ctx context.Context, seasonId uuid.UUID) error
}

var _ Gateway = (*RWKDBConnection)(nil)

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

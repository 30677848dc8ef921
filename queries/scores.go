package queries

import (
	"context"
	"log/slog"

	"github.com/rwk-liga/rwk-engine/models"

	"github.com/google/uuid"
)

// FetchScores returns every stored record, superseded corrections included.
func (p *RWKDBConnection) FetchScores(ctx context.Context, seasonId uuid.UUID, teamId *uuid.UUID) ([]models.ScoreRecord, error) {
	records := []models.ScoreRecord{}
	query :=
		`
		SELECT record_id, shooter_id, team_id, league_id, season_id, round_number, ring_total, entered_at
		FROM score_records
		WHERE season_id = $1
		ORDER BY entered_at ASC, record_id ASC
		`
	queryTeam :=
		`
		SELECT record_id, shooter_id, team_id, league_id, season_id, round_number, ring_total, entered_at
		FROM score_records
		WHERE season_id = $1 AND team_id = $2
		ORDER BY entered_at ASC, record_id ASC
		`
	var err error
	if teamId != nil {
		err = p.DB.SelectContext(ctx, &records, queryTeam, seasonId, *teamId)
	} else {
		err = p.DB.SelectContext(ctx, &records, query, seasonId)
	}
	if err != nil {
		slog.Error("error selecting score records", "season_id", seasonId, "error", err)
		return nil, err
	}
	return records, nil
}

package queries

import (
	"context"
	"log/slog"

	"github.com/rwk-liga/rwk-engine/models"

	"github.com/google/uuid"
)

// FetchLeagues returns the leagues of a season, highest tier first.
func (p *RWKDBConnection) FetchLeagues(ctx context.Context, seasonId uuid.UUID) ([]models.LeagueModel, error) {
	leagues := []models.LeagueModel{}
	query :=
		`
		SELECT league_id, season_id, name, league_order, classification
		FROM leagues
		WHERE season_id = $1
		ORDER BY league_order ASC
		`
	if err := p.DB.SelectContext(ctx, &leagues, query, seasonId); err != nil {
		slog.Error("error selecting leagues", "season_id", seasonId, "error", err)
		return nil, err
	}
	return leagues, nil
}

package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rwk-liga/rwk-engine/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type seasonCount struct {
	Count int `db:"count"`
}

func (p *RWKDBConnection) FetchSeason(ctx context.Context, seasonId uuid.UUID) (models.SeasonModel, error) {
	season := models.SeasonModel{}
	query :=
		`
		SELECT season_id, competition_year, discipline_type, status, display_name, created_at
		FROM seasons
		WHERE season_id = $1
		`
	err := p.DB.GetContext(ctx, &season, query, seasonId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SeasonModel{}, fmt.Errorf("%w: %s", ErrSeasonNotFound, seasonId)
		}
		slog.Error("error selecting season", "season_id", seasonId, "error", err)
		return models.SeasonModel{}, err
	}
	return season, nil
}

// CommitNewSeason writes the season, its leagues and its teams in one transaction.
// Either all rows are committed or none.
func (p *RWKDBConnection) CommitNewSeason(ctx context.Context, season models.SeasonModel, leagues []models.LeagueModel, teams []models.TeamModel) (uuid.UUID, error) {
	if err := checkGraph(season, leagues, teams); err != nil {
		return uuid.Nil, err
	}

	count := seasonCount{}
	queryCount :=
		`
		SELECT COUNT(*) AS count FROM seasons WHERE competition_year = $1 AND discipline_type = $2
		`
	querySeason :=
		`
		INSERT INTO seasons
		(season_id, competition_year, discipline_type, status, display_name)
		VALUES($1, $2, $3, $4, $5)
		`
	queryLeague :=
		`
		INSERT INTO leagues
		(league_id, season_id, name, league_order, classification)
		VALUES($1, $2, $3, $4, $5)
		`
	queryTeam :=
		`
		INSERT INTO teams
		(team_id, club_id, league_id, season_id, name, shooter_ids, is_new_club)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		`

	tx, errTx := p.DB.BeginTxx(ctx, nil)
	if errTx != nil {
		slog.Error("error creating season tx", "error", errTx)
		return uuid.Nil, errTx
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := tx.GetContext(ctx, &count.Count, queryCount, season.CompetitionYear, season.DisciplineType); err != nil {
		slog.Error("error counting seasons", "error", err)
		return uuid.Nil, err
	}
	if count.Count >= 1 {
		return uuid.Nil, fmt.Errorf("%w: %s %d", ErrSeasonAlreadyExists, season.DisciplineType, season.CompetitionYear)
	}

	if _, err := tx.ExecContext(ctx, querySeason,
		season.SeasonId,
		season.CompetitionYear,
		season.DisciplineType,
		season.Status,
		season.DisplayName,
	); err != nil {
		slog.Error("failed to insert season", "season_id", season.SeasonId, "error", err)
		return uuid.Nil, err
	}

	for _, l := range leagues {
		if _, err := tx.ExecContext(ctx, queryLeague,
			l.LeagueId,
			l.SeasonId,
			l.Name,
			l.Order,
			l.Classification,
		); err != nil {
			slog.Error("failed to insert league", "league", l.Name, "error", err)
			return uuid.Nil, err
		}
	}

	for _, t := range teams {
		if _, err := tx.ExecContext(ctx, queryTeam,
			t.TeamId,
			t.ClubId,
			t.LeagueId,
			t.SeasonId,
			t.Name,
			pq.Array(uuidStrings(t.ShooterIds)),
			t.IsNewClub,
		); err != nil {
			slog.Error("failed to insert team", "team", t.Name, "error", err)
			return uuid.Nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit season", "season_id", season.SeasonId, "error", err)
		return uuid.Nil, err
	}
	return season.SeasonId, nil
}

// checkGraph refuses graphs whose leagues or teams point outside the new season.
func checkGraph(season models.SeasonModel, leagues []models.LeagueModel, teams []models.TeamModel) error {
	known := make(map[uuid.UUID]bool, len(leagues))
	for _, l := range leagues {
		if l.SeasonId != season.SeasonId {
			return fmt.Errorf("%w: league %q belongs to season %s", ErrInconsistentGraph, l.Name, l.SeasonId)
		}
		known[l.LeagueId] = true
	}
	for _, t := range teams {
		if t.SeasonId != season.SeasonId || !known[t.LeagueId] {
			return fmt.Errorf("%w: team %q is not placed in a league of season %s", ErrInconsistentGraph, t.Name, season.SeasonId)
		}
	}
	return nil
}

func (p *RWKDBConnection) UpdateSeasonStatus(ctx context.Context, seasonId uuid.UUID, status models.SeasonStatus) error {
	var current models.SeasonStatus
	querySelect :=
		`
		SELECT status FROM seasons WHERE season_id = $1 FOR UPDATE
		`
	query :=
		`
		UPDATE seasons
		SET status = $1
		WHERE season_id = $2
		`
	tx, errTx := p.DB.BeginTxx(ctx, nil)
	if errTx != nil {
		return errTx
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := tx.GetContext(ctx, &current, querySelect, seasonId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrSeasonNotFound, seasonId)
		}
		slog.Error("error selecting season status", "season_id", seasonId, "error", err)
		return err
	}
	if !current.CanMoveTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current, status)
	}

	if _, err := tx.ExecContext(ctx, query, status, seasonId); err != nil {
		slog.Error("failed to update season status", "season_id", seasonId, "error", err)
		return err
	}
	return tx.Commit()
}

// DeleteSeason removes a planned season together with its leagues and teams.
// Running and closed seasons are kept.
func (p *RWKDBConnection) DeleteSeason(ctx context.Context, seasonId uuid.UUID) error {
	query :=
		`
		DELETE FROM seasons WHERE season_id = $1 AND status = $2
		`
	sqlRow, err := p.DB.ExecContext(ctx, query, seasonId, models.SeasonPlanned)
	if err != nil {
		slog.Error("failed to delete season", "season_id", seasonId, "error", err)
		return err
	}
	row, err := sqlRow.RowsAffected()
	if err != nil {
		slog.Error("failed to read deleted rows", "season_id", seasonId, "error", err)
		return err
	}
	if row == 0 {
		return fmt.Errorf("%w: could not delete season %s. It does not exist or is no longer planned", ErrSeasonNotFound, seasonId)
	}
	return nil
}

package queries

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rwk-liga/rwk-engine/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type teamRow struct {
	TeamId     uuid.UUID      `db:"team_id"`
	ClubId     uuid.UUID      `db:"club_id"`
	LeagueId   uuid.UUID      `db:"league_id"`
	SeasonId   uuid.UUID      `db:"season_id"`
	Name       string         `db:"name"`
	ShooterIds pq.StringArray `db:"shooter_ids"`
	IsNewClub  bool           `db:"is_new_club"`
}

func (r teamRow) model() (models.TeamModel, error) {
	shooters := make([]uuid.UUID, 0, len(r.ShooterIds))
	for _, s := range r.ShooterIds {
		id, err := uuid.Parse(s)
		if err != nil {
			return models.TeamModel{}, fmt.Errorf("team %s has invalid shooter id %q: %w", r.TeamId, s, err)
		}
		shooters = append(shooters, id)
	}
	return models.TeamModel{
		TeamId:     r.TeamId,
		ClubId:     r.ClubId,
		LeagueId:   r.LeagueId,
		SeasonId:   r.SeasonId,
		Name:       r.Name,
		ShooterIds: shooters,
		IsNewClub:  r.IsNewClub,
	}, nil
}

// FetchTeams returns the teams of a season, or of one league when leagueId is set.
// Teams are ordered by name so that standings ties are stable between runs.
func (p *RWKDBConnection) FetchTeams(ctx context.Context, seasonId uuid.UUID, leagueId *uuid.UUID) ([]models.TeamModel, error) {
	rows := []teamRow{}
	query :=
		`
		SELECT team_id, club_id, league_id, season_id, name, shooter_ids, is_new_club
		FROM teams
		WHERE season_id = $1
		ORDER BY name ASC, team_id ASC
		`
	queryLeague :=
		`
		SELECT team_id, club_id, league_id, season_id, name, shooter_ids, is_new_club
		FROM teams
		WHERE season_id = $1 AND league_id = $2
		ORDER BY name ASC, team_id ASC
		`
	var err error
	if leagueId != nil {
		err = p.DB.SelectContext(ctx, &rows, queryLeague, seasonId, *leagueId)
	} else {
		err = p.DB.SelectContext(ctx, &rows, query, seasonId)
	}
	if err != nil {
		slog.Error("error selecting teams", "season_id", seasonId, "error", err)
		return nil, err
	}

	teams := make([]models.TeamModel, 0, len(rows))
	for _, r := range rows {
		team, err := r.model()
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func (p *RWKDBConnection) FetchClubNames(ctx context.Context, clubIds []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(clubIds))
	if len(clubIds) == 0 {
		return names, nil
	}

	clubs := []models.ClubModel{}
	query :=
		`
		SELECT club_id, name FROM clubs WHERE club_id = ANY($1)
		`
	if err := p.DB.SelectContext(ctx, &clubs, query, pq.Array(uuidStrings(clubIds))); err != nil {
		slog.Error("error selecting club names", "error", err)
		return nil, err
	}
	for _, c := range clubs {
		names[c.ClubId] = c.Name
	}
	return names, nil
}

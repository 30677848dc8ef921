// Package transition runs the end-of-season workflow against the database:
// league tables, promotion and relegation recommendations and the creation
// of the next season.
package transition

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/rwk-liga/rwk-engine/builder"
	"github.com/rwk-liga/rwk-engine/models"
	"github.com/rwk-liga/rwk-engine/queries"
	"github.com/rwk-liga/rwk-engine/rules"
	"github.com/rwk-liga/rwk-engine/standings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	gateway queries.Gateway
	logger  *slog.Logger
	tracer  trace.Tracer
	rounds  map[models.DisciplineType]int
}

// NextSeasonRequest describes the season to create from a finished one.
// A zero year means the year after the source season, an empty discipline
// keeps the source season's discipline.
type NextSeasonRequest struct {
	SourceSeasonId uuid.UUID
	Target         builder.Target
	Decisions      []models.DecisionModel
	NewClubIds     []uuid.UUID
}

func NewService(gateway queries.Gateway, logger *slog.Logger, tracer trace.Tracer, rounds map[models.DisciplineType]int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer("github.com/rwk-liga/rwk-engine/transition")
	}
	return &Service{gateway: gateway, logger: logger, tracer: tracer, rounds: rounds}
}

type seasonData struct {
	season    models.SeasonModel
	leagues   []models.LeagueModel
	teams     []models.TeamModel
	scores    []models.ScoreRecord
	clubNames map[uuid.UUID]string
}

func (s *Service) load(ctx context.Context, seasonId uuid.UUID, withScores bool, extraClubs []uuid.UUID) (*seasonData, error) {
	season, err := s.gateway.FetchSeason(ctx, seasonId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch season %s: %w", seasonId, err)
	}
	data := &seasonData{season: season}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		leagues, err := s.gateway.FetchLeagues(gCtx, seasonId)
		if err != nil {
			return fmt.Errorf("failed to fetch leagues of season %s: %w", seasonId, err)
		}
		data.leagues = leagues
		return nil
	})
	g.Go(func() error {
		teams, err := s.gateway.FetchTeams(gCtx, seasonId, nil)
		if err != nil {
			return fmt.Errorf("failed to fetch teams of season %s: %w", seasonId, err)
		}
		data.teams = teams
		return nil
	})
	if withScores {
		g.Go(func() error {
			scores, err := s.gateway.FetchScores(gCtx, seasonId, nil)
			if err != nil {
				return fmt.Errorf("failed to fetch scores of season %s: %w", seasonId, err)
			}
			data.scores = scores
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	clubIds := make([]uuid.UUID, 0, len(data.teams)+len(extraClubs))
	for _, t := range data.teams {
		clubIds = append(clubIds, t.ClubId)
	}
	clubIds = append(clubIds, extraClubs...)
	slices.SortFunc(clubIds, func(a, b uuid.UUID) int { return cmp.Compare(a.String(), b.String()) })
	clubIds = slices.Compact(clubIds)

	clubNames, err := s.gateway.FetchClubNames(ctx, clubIds)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch club names: %w", err)
	}
	data.clubNames = clubNames
	return data, nil
}

func (s *Service) roundCount(d models.DisciplineType) (int, error) {
	n, ok := s.rounds[d]
	if !ok || n <= 0 {
		return 0, fmt.Errorf("no round count configured for discipline %s", d)
	}
	return n, nil
}

func (s *Service) tables(data *seasonData) (map[uuid.UUID][]models.StandingsModel, error) {
	roundCount, err := s.roundCount(data.season.DisciplineType)
	if err != nil {
		return nil, err
	}

	teamsByLeague := make(map[uuid.UUID][]models.TeamModel, len(data.leagues))
	leagueOfTeam := make(map[uuid.UUID]uuid.UUID, len(data.teams))
	for _, t := range data.teams {
		teamsByLeague[t.LeagueId] = append(teamsByLeague[t.LeagueId], t)
		leagueOfTeam[t.TeamId] = t.LeagueId
	}
	recordsByLeague := make(map[uuid.UUID][]models.ScoreRecord, len(data.leagues))
	for _, r := range data.scores {
		leagueId, ok := leagueOfTeam[r.TeamId]
		if !ok {
			continue
		}
		recordsByLeague[leagueId] = append(recordsByLeague[leagueId], r)
	}

	result := make(map[uuid.UUID][]models.StandingsModel, len(data.leagues))
	for _, l := range data.leagues {
		result[l.LeagueId] = standings.Calculate(l, teamsByLeague[l.LeagueId], data.clubNames, recordsByLeague[l.LeagueId], roundCount)
	}
	return result, nil
}

// ComputeStandings returns the table of every league of the season, keyed by league id.
func (s *Service) ComputeStandings(ctx context.Context, seasonId uuid.UUID) (map[uuid.UUID][]models.StandingsModel, error) {
	ctx, span := s.tracer.Start(ctx, "TransitionService.ComputeStandings", trace.WithAttributes(
		attribute.String("season_id", seasonId.String()),
	))
	defer span.End()

	data, err := s.load(ctx, seasonId, true, nil)
	if err != nil {
		return nil, s.fail(ctx, span, "Failed to load season", err)
	}
	result, err := s.tables(data)
	if err != nil {
		return nil, s.fail(ctx, span, "Failed to compute standings", err)
	}

	s.logger.InfoContext(ctx, "Standings computed",
		slog.String("season_id", seasonId.String()),
		slog.Int("leagues", len(data.leagues)),
		slog.Int("teams", len(data.teams)),
		slog.Int("records", len(data.scores)),
	)
	return result, nil
}

// Leagues returns the leagues of a season in tier order, open class leagues included.
func (s *Service) Leagues(ctx context.Context, seasonId uuid.UUID) ([]models.LeagueModel, error) {
	leagues, err := s.gateway.FetchLeagues(ctx, seasonId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leagues of season %s: %w", seasonId, err)
	}
	slices.SortStableFunc(leagues, func(a, b models.LeagueModel) int { return cmp.Compare(a.Order, b.Order) })
	return leagues, nil
}

// Recommend computes unconfirmed decisions for every team of the season,
// league by league in ladder order.
func (s *Service) Recommend(ctx context.Context, seasonId uuid.UUID, overrides models.Overrides) ([]models.DecisionModel, error) {
	ctx, span := s.tracer.Start(ctx, "TransitionService.Recommend", trace.WithAttributes(
		attribute.String("season_id", seasonId.String()),
	))
	defer span.End()

	data, err := s.load(ctx, seasonId, true, nil)
	if err != nil {
		return nil, s.fail(ctx, span, "Failed to load season", err)
	}
	tables, err := s.tables(data)
	if err != nil {
		return nil, s.fail(ctx, span, "Failed to compute standings", err)
	}
	s.warnUnknownOverrides(ctx, data, overrides)

	leagues := slices.Clone(data.leagues)
	slices.SortStableFunc(leagues, func(a, b models.LeagueModel) int { return cmp.Compare(a.Order, b.Order) })

	decisions := make([]models.DecisionModel, 0, len(data.teams))
	for _, l := range leagues {
		higher, lower := rules.Neighbors(data.leagues, l.LeagueId)
		decisions = append(decisions, rules.Decide(rules.Input{
			League:    l,
			Standings: tables[l.LeagueId],
			Higher:    tier(higher, tables),
			Lower:     tier(lower, tables),
			Overrides: overrides,
		})...)
	}

	moves := 0
	for _, d := range decisions {
		if d.Action.Moves() {
			moves++
		}
	}
	s.logger.InfoContext(ctx, "Decisions recommended",
		slog.String("season_id", seasonId.String()),
		slog.Int("decisions", len(decisions)),
		slog.Int("moves", moves),
	)
	return decisions, nil
}

func tier(l *models.LeagueModel, tables map[uuid.UUID][]models.StandingsModel) *rules.Tier {
	if l == nil {
		return nil
	}
	return &rules.Tier{League: *l, Standings: tables[l.LeagueId]}
}

func (s *Service) warnUnknownOverrides(ctx context.Context, data *seasonData, overrides models.Overrides) {
	teams := make(map[uuid.UUID]bool, len(data.teams))
	for _, t := range data.teams {
		teams[t.TeamId] = true
	}
	leagues := make(map[uuid.UUID]bool, len(data.leagues))
	for _, l := range data.leagues {
		leagues[l.LeagueId] = true
	}
	for _, id := range overrides.WithdrawnTeamIds {
		if !teams[id] {
			s.logger.WarnContext(ctx, "Withdrawn team is not part of the season", slog.String("team_id", id.String()))
		}
	}
	for id := range overrides.TargetLeagueSize {
		if !leagues[id] {
			s.logger.WarnContext(ctx, "Target size given for unknown league", slog.String("league_id", id.String()))
		}
	}
	for id := range overrides.AdditionalPromotionSlots {
		if !leagues[id] {
			s.logger.WarnContext(ctx, "Promotion slots given for unknown league", slog.String("league_id", id.String()))
		}
	}
}

// CreateNextSeason builds the next season from the source season and the
// confirmed decisions and writes it in a single transaction.
func (s *Service) CreateNextSeason(ctx context.Context, req NextSeasonRequest) (uuid.UUID, error) {
	ctx, span := s.tracer.Start(ctx, "TransitionService.CreateNextSeason", trace.WithAttributes(
		attribute.String("source_season_id", req.SourceSeasonId.String()),
	))
	defer span.End()

	data, err := s.load(ctx, req.SourceSeasonId, false, req.NewClubIds)
	if err != nil {
		return uuid.Nil, s.fail(ctx, span, "Failed to load source season", err)
	}

	target := req.Target
	if target.CompetitionYear == 0 {
		target.CompetitionYear = data.season.CompetitionYear + 1
	}
	if target.DisciplineType == "" {
		target.DisciplineType = data.season.DisciplineType
	}

	graph, err := builder.Build(builder.Input{
		SourceSeason: data.season,
		Leagues:      data.leagues,
		Teams:        data.teams,
		ClubNames:    data.clubNames,
		Target:       target,
		Decisions:    req.Decisions,
		NewClubIds:   req.NewClubIds,
	})
	if err != nil {
		return uuid.Nil, s.fail(ctx, span, "Failed to build next season", err)
	}

	seasonId, err := s.gateway.CommitNewSeason(ctx, graph.Season, graph.Leagues, graph.Teams)
	if err != nil {
		return uuid.Nil, s.fail(ctx, span, "Failed to commit next season", err)
	}

	span.SetAttributes(attribute.String("season_id", seasonId.String()))
	s.logger.InfoContext(ctx, "Next season created",
		slog.String("season_id", seasonId.String()),
		slog.String("name", graph.Season.DisplayName),
		slog.Int("leagues", len(graph.Leagues)),
		slog.Int("teams", len(graph.Teams)),
	)
	return seasonId, nil
}

// SetStatus moves a season along planned, running, closed.
func (s *Service) SetStatus(ctx context.Context, seasonId uuid.UUID, status models.SeasonStatus) error {
	ctx, span := s.tracer.Start(ctx, "TransitionService.SetStatus", trace.WithAttributes(
		attribute.String("season_id", seasonId.String()),
		attribute.String("status", string(status)),
	))
	defer span.End()

	if err := s.gateway.UpdateSeasonStatus(ctx, seasonId, status); err != nil {
		return s.fail(ctx, span, "Failed to update season status", err)
	}
	s.logger.InfoContext(ctx, "Season status updated",
		slog.String("season_id", seasonId.String()),
		slog.String("status", string(status)),
	)
	return nil
}

// DiscardSeason deletes a season that was created but never started.
func (s *Service) DiscardSeason(ctx context.Context, seasonId uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "TransitionService.DiscardSeason", trace.WithAttributes(
		attribute.String("season_id", seasonId.String()),
	))
	defer span.End()

	if err := s.gateway.DeleteSeason(ctx, seasonId); err != nil {
		return s.fail(ctx, span, "Failed to delete season", err)
	}
	s.logger.InfoContext(ctx, "Season deleted", slog.String("season_id", seasonId.String()))
	return nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, msg string, err error) error {
	s.logger.ErrorContext(ctx, msg, slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return err
}

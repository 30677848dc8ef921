package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rwk-liga/rwk-engine/builder"
	"github.com/rwk-liga/rwk-engine/config"
	dbconnection "github.com/rwk-liga/rwk-engine/db_connection"
	"github.com/rwk-liga/rwk-engine/models"
	"github.com/rwk-liga/rwk-engine/review"
	"github.com/rwk-liga/rwk-engine/telemetry"
	"github.com/rwk-liga/rwk-engine/transition"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "rwk",
		Usage: "standings and season transitions of the Rundenwettkampf leagues",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			newMigrateCommand(),
			newStandingsCommand(),
			newDecideCommand(),
			newBuildCommand(),
			newSeasonCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// env is what every database command needs.
type env struct {
	service *transition.Service
	close   func()
}

const shutdownTimeout = 5 * time.Second

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := cfg.Log.NewLogger()

	shutdown, err := telemetry.Setup(c.Context, cfg.Tracing)
	if err != nil {
		return nil, err
	}

	conn, db, err := dbconnection.NewDBConnection(c.Context, cfg.Database.URL)
	if err != nil {
		_ = shutdown(c.Context)
		return nil, err
	}
	return &env{
		service: transition.NewService(conn.RWKDBConnection, logger, nil, cfg.Rounds),
		close: func() {
			_ = db.Close()
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn("Failed to flush traces", slog.Any("error", err))
			}
		},
	}, nil
}

func seasonFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "season", Usage: "season id", Required: true}
}

func parseSeason(c *cli.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.String("season"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid season id %q: %w", c.String("season"), err)
	}
	return id, nil
}

func newMigrateCommand() *cli.Command {
	run := func(step func(sourceURL, dsn string) (uint, error), done string) cli.ActionFunc {
		return func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			v, err := step(cfg.Database.Migrations, cfg.Database.URL)
			if err != nil {
				return err
			}
			fmt.Printf("%s, schema version %d\n", done, v)
			return nil
		}
	}
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{Name: "up", Usage: "apply all pending migrations", Action: run(dbconnection.Migrate, "Migrated")},
			{Name: "rollback", Usage: "revert the last migration", Action: run(dbconnection.Rollback, "Rolled back")},
		},
	}
}

func newStandingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print the league tables of a season",
		Flags: []cli.Flag{seasonFlag()},
		Action: func(c *cli.Context) error {
			seasonId, err := parseSeason(c)
			if err != nil {
				return err
			}
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			tables, err := e.service.ComputeStandings(c.Context, seasonId)
			if err != nil {
				return err
			}

			leagues, err := e.service.Leagues(c.Context, seasonId)
			if err != nil {
				return err
			}
			return printStandings(c.App.Writer, leagues, tables)
		},
	}
}

// printStandings writes one table per league in the order given.
func printStandings(out io.Writer, leagues []models.LeagueModel, tables map[uuid.UUID][]models.StandingsModel) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, l := range leagues {
		fmt.Fprintf(w, "%s\n", l.Name)
		table := tables[l.LeagueId]
		if len(table) == 0 {
			fmt.Fprintln(w, "no teams")
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintln(w, "Pos\tTeam\tClub\tRings\tRounds\tAverage")
		for _, s := range table {
			avg := "-"
			if s.AverageScore != nil {
				avg = fmt.Sprintf("%.1f", *s.AverageScore)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n", s.Position, s.TeamName, s.ClubName, s.TotalScore, s.RoundsPlayed, avg)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func newDecideCommand() *cli.Command {
	return &cli.Command{
		Name:  "decide",
		Usage: "write promotion and relegation recommendations for review",
		Flags: []cli.Flag{
			seasonFlag(),
			&cli.StringFlag{Name: "overrides", Usage: "YAML file with withdrawn teams, target sizes and promotion slots"},
			&cli.StringFlag{Name: "out", Value: "decisions.yaml", Usage: "where to write the decisions"},
		},
		Action: func(c *cli.Context) error {
			seasonId, err := parseSeason(c)
			if err != nil {
				return err
			}

			var overrides models.Overrides
			if path := c.String("overrides"); path != "" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open overrides: %w", err)
				}
				overrides, err = review.ReadOverrides(f)
				_ = f.Close()
				if err != nil {
					return err
				}
			}

			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			decisions, err := e.service.Recommend(c.Context, seasonId, overrides)
			if err != nil {
				return err
			}

			out, err := os.Create(c.String("out"))
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", c.String("out"), err)
			}
			defer out.Close()
			set := review.DecisionSet{SourceSeasonId: seasonId, GeneratedAt: time.Now().UTC(), Decisions: decisions}
			if err := review.WriteDecisions(out, set); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Wrote %d decisions to %s. Set confirmed: true on every decision to apply.\n", len(decisions), c.String("out"))
			return nil
		},
	}
}

func newBuildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "create the next season from reviewed decisions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "decisions", Value: "decisions.yaml", Usage: "reviewed decision file"},
			&cli.IntFlag{Name: "year", Usage: "competition year of the new season (default: source year + 1)"},
			&cli.StringFlag{Name: "discipline", Usage: "discipline of the new season (default: source discipline)"},
			&cli.StringFlag{Name: "name", Usage: "display name of the new season"},
			&cli.StringSliceFlag{Name: "new-club", Usage: "id of a club joining this season"},
		},
		Action: func(c *cli.Context) error {
			f, err := os.Open(c.String("decisions"))
			if err != nil {
				return fmt.Errorf("failed to open decisions: %w", err)
			}
			set, err := review.ReadDecisions(f)
			_ = f.Close()
			if err != nil {
				return err
			}

			newClubs := make([]uuid.UUID, 0, len(c.StringSlice("new-club")))
			for _, raw := range c.StringSlice("new-club") {
				id, err := uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("invalid club id %q: %w", raw, err)
				}
				newClubs = append(newClubs, id)
			}

			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			seasonId, err := e.service.CreateNextSeason(c.Context, transition.NextSeasonRequest{
				SourceSeasonId: set.SourceSeasonId,
				Target: builder.Target{
					CompetitionYear: c.Int("year"),
					DisciplineType:  models.DisciplineType(c.String("discipline")),
					DisplayName:     c.String("name"),
				},
				Decisions:  review.Confirmed(set.Decisions),
				NewClubIds: newClubs,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Created season %s\n", seasonId)
			return nil
		},
	}
}

func newSeasonCommand() *cli.Command {
	status := func(to models.SeasonStatus) cli.ActionFunc {
		return func(c *cli.Context) error {
			seasonId, err := parseSeason(c)
			if err != nil {
				return err
			}
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()
			return e.service.SetStatus(c.Context, seasonId, to)
		}
	}
	return &cli.Command{
		Name:  "season",
		Usage: "season lifecycle",
		Subcommands: []*cli.Command{
			{Name: "start", Usage: "mark a planned season as running", Flags: []cli.Flag{seasonFlag()}, Action: status(models.SeasonRunning)},
			{Name: "close", Usage: "close a season", Flags: []cli.Flag{seasonFlag()}, Action: status(models.SeasonClosed)},
			{
				Name:  "delete",
				Usage: "delete a season that was never started",
				Flags: []cli.Flag{seasonFlag()},
				Action: func(c *cli.Context) error {
					seasonId, err := parseSeason(c)
					if err != nil {
						return err
					}
					e, err := setup(c)
					if err != nil {
						return err
					}
					defer e.close()
					return e.service.DiscardSeason(c.Context, seasonId)
				},
			},
		},
	}
}

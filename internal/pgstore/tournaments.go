package pgstore

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"legend-hub/internal/portal"
)

var tournamentCols = []string{"id", "title", "created_at", "start_time", "end_time", "team_limit"}

func scanTournament(row pgx.Row) (portal.Tournament, error) {
	var tr portal.Tournament
	err := row.Scan(&tr.ID, &tr.Title, &tr.CreatedAt, &tr.StartTime, &tr.EndTime, &tr.Limit)
	return tr, err
}

func (t *pgTx) InsertTournament(ctx context.Context, tr *portal.Tournament) error {
	q := psql.Insert("tournaments").
		Columns("title", "created_at", "start_time", "end_time", "team_limit").
		Values(tr.Title, tr.CreatedAt, tr.StartTime, tr.EndTime, tr.Limit)
	return translate(qInsert(ctx, t.tx, q, &tr.ID), "insert tournament")
}

func (t *pgTx) getTournament(ctx context.Context, id int64, lock bool) (portal.Tournament, error) {
	q := psql.Select(tournamentCols...).From("tournaments").Where(sq.Eq{"id": id})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	tr, err := qRow(ctx, t.tx, q, scanTournament)
	return tr, translate(err, fmt.Sprintf("tournament %d", id))
}

func (t *pgTx) GetTournament(ctx context.Context, id int64) (portal.Tournament, error) {
	return t.getTournament(ctx, id, false)
}

func (t *pgTx) LockTournament(ctx context.Context, id int64) (portal.Tournament, error) {
	return t.getTournament(ctx, id, true)
}

func (t *pgTx) ListTournaments(ctx context.Context) ([]portal.Tournament, error) {
	q := psql.Select(tournamentCols...).From("tournaments").OrderBy("start_time", "id")
	out, err := qList(ctx, t.tx, q, scanTournament)
	return out, translate(err, "list tournaments")
}

/* ----- registrations ----- */

func scanRegistration(row pgx.Row) (portal.Registration, error) {
	var r portal.Registration
	err := row.Scan(&r.ID, &r.TeamID, &r.TournamentID, &r.CreatedAt)
	return r, err
}

func (t *pgTx) InsertRegistration(ctx context.Context, r *portal.Registration) error {
	q := psql.Insert("registrations").
		Columns("team_id", "tournament_id", "created_at").
		Values(r.TeamID, r.TournamentID, r.CreatedAt)
	return translate(qInsert(ctx, t.tx, q, &r.ID), "insert registration")
}

func (t *pgTx) ListRegistrations(ctx context.Context, tournamentID int64) ([]portal.Registration, error) {
	q := psql.Select("id", "team_id", "tournament_id", "created_at").From("registrations").
		Where(sq.Eq{"tournament_id": tournamentID}).
		OrderBy("id")
	out, err := qList(ctx, t.tx, q, scanRegistration)
	return out, translate(err, "list registrations")
}

/* ----- standings ----- */

var standingCols = []string{"id", "team_id", "tournament_id", "score", "wins", "losses", "draws", "games_played", "registered_at"}

func scanStanding(row pgx.Row) (portal.Standing, error) {
	var s portal.Standing
	err := row.Scan(&s.ID, &s.TeamID, &s.TournamentID, &s.Score, &s.Wins, &s.Losses, &s.Draws, &s.GamesPlayed, &s.RegisteredAt)
	return s, err
}

func (t *pgTx) InsertStanding(ctx context.Context, s *portal.Standing) error {
	q := psql.Insert("standings").
		Columns("team_id", "tournament_id", "score", "wins", "losses", "draws", "games_played", "registered_at").
		Values(s.TeamID, s.TournamentID, s.Score, s.Wins, s.Losses, s.Draws, s.GamesPlayed, s.RegisteredAt)
	return translate(qInsert(ctx, t.tx, q, &s.ID), "insert standing")
}

func (t *pgTx) GetStanding(ctx context.Context, teamID, tournamentID int64) (portal.Standing, error) {
	q := psql.Select(standingCols...).From("standings").
		Where(sq.Eq{"team_id": teamID, "tournament_id": tournamentID}).
		Suffix("FOR UPDATE")
	s, err := qRow(ctx, t.tx, q, scanStanding)
	return s, translate(err, fmt.Sprintf("standing of team %d in tournament %d", teamID, tournamentID))
}

func (t *pgTx) UpdateStanding(ctx context.Context, s portal.Standing) error {
	q := psql.Update("standings").
		Set("score", s.Score).
		Set("wins", s.Wins).
		Set("losses", s.Losses).
		Set("draws", s.Draws).
		Set("games_played", s.GamesPlayed).
		Where(sq.Eq{"id": s.ID})
	return translate(qUpdate(ctx, t.tx, q), fmt.Sprintf("update standing %d", s.ID))
}

func (t *pgTx) ListStandings(ctx context.Context, tournamentID int64) ([]portal.Standing, error) {
	q := psql.Select(standingCols...).From("standings").
		Where(sq.Eq{"tournament_id": tournamentID}).
		OrderBy("id")
	out, err := qList(ctx, t.tx, q, scanStanding)
	return out, translate(err, "list standings")
}

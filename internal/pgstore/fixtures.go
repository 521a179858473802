package pgstore

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"legend-hub/internal/portal"
)

var fixtureCols = []string{
	"id", "tournament_id", "scheduled_at", "team_1_id", "team_2_id",
	"score_1", "score_2", "image_1", "image_2", "evidence_key_1", "evidence_key_2",
	"votes_1", "votes_2", "finalized", "finalized_at",
}

func scanFixture(row pgx.Row) (portal.Fixture, error) {
	var f portal.Fixture
	err := row.Scan(
		&f.ID, &f.TournamentID, &f.Time, &f.Team1ID, &f.Team2ID,
		&f.Score1, &f.Score2, &f.Image1, &f.Image2, &f.EvidenceKey1, &f.EvidenceKey2,
		&f.Votes1, &f.Votes2, &f.Finalized, &f.FinalizedAt,
	)
	return f, err
}

func (t *pgTx) InsertFixture(ctx context.Context, f *portal.Fixture) error {
	q := psql.Insert("fixtures").
		Columns("tournament_id", "scheduled_at", "team_1_id", "team_2_id").
		Values(f.TournamentID, f.Time, f.Team1ID, f.Team2ID)
	return translate(qInsert(ctx, t.tx, q, &f.ID), "insert fixture")
}

func (t *pgTx) getFixture(ctx context.Context, id int64, lock bool) (portal.Fixture, error) {
	q := psql.Select(fixtureCols...).From("fixtures").Where(sq.Eq{"id": id})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	f, err := qRow(ctx, t.tx, q, scanFixture)
	return f, translate(err, fmt.Sprintf("fixture %d", id))
}

func (t *pgTx) GetFixture(ctx context.Context, id int64) (portal.Fixture, error) {
	return t.getFixture(ctx, id, false)
}

func (t *pgTx) LockFixture(ctx context.Context, id int64) (portal.Fixture, error) {
	return t.getFixture(ctx, id, true)
}

func (t *pgTx) UpdateFixture(ctx context.Context, f portal.Fixture) error {
	q := psql.Update("fixtures").SetMap(map[string]any{
		"score_1":        f.Score1,
		"score_2":        f.Score2,
		"image_1":        f.Image1,
		"image_2":        f.Image2,
		"evidence_key_1": f.EvidenceKey1,
		"evidence_key_2": f.EvidenceKey2,
		"votes_1":        f.Votes1,
		"votes_2":        f.Votes2,
		"finalized":      f.Finalized,
		"finalized_at":   f.FinalizedAt,
	}).Where(sq.Eq{"id": f.ID})
	return translate(qUpdate(ctx, t.tx, q), fmt.Sprintf("update fixture %d", f.ID))
}

func (t *pgTx) ListFixtures(ctx context.Context, tournamentID int64) ([]portal.Fixture, error) {
	q := psql.Select(fixtureCols...).From("fixtures").
		Where(sq.Eq{"tournament_id": tournamentID}).
		OrderBy("id")
	out, err := qList(ctx, t.tx, q, scanFixture)
	return out, translate(err, "list fixtures")
}

// InsertVote relies on the (fixture_id, user_id) primary key to reject a
// second vote.
func (t *pgTx) InsertVote(ctx context.Context, v *portal.Vote) error {
	q := psql.Insert("fixture_votes").
		Columns("fixture_id", "user_id", "side", "created_at").
		Values(v.FixtureID, v.UserID, int16(v.Side), v.CreatedAt)
	_, err := qExec(ctx, t.tx, q)
	return translate(err, fmt.Sprintf("vote of user %d on fixture %d", v.UserID, v.FixtureID))
}

/* ----- audit ----- */

func scanAudit(row pgx.Row) (portal.AuditEntry, error) {
	var e portal.AuditEntry
	err := row.Scan(&e.ID, &e.ActorID, &e.Action, &e.Details, &e.CreatedAt)
	return e, err
}

func (t *pgTx) InsertAudit(ctx context.Context, e *portal.AuditEntry) error {
	q := psql.Insert("logs").
		Columns("actor_id", "action", "details", "created_at").
		Values(e.ActorID, e.Action, e.Details, e.CreatedAt)
	return translate(qInsert(ctx, t.tx, q, &e.ID), "insert log")
}

func (t *pgTx) ListAudit(ctx context.Context, limit int) ([]portal.AuditEntry, error) {
	q := psql.Select("id", "actor_id", "action", "details", "created_at").From("logs").
		OrderBy("id DESC").
		Limit(uint64(limit))
	out, err := qList(ctx, t.tx, q, scanAudit)
	return out, translate(err, "list logs")
}

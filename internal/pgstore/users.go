package pgstore

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"legend-hub/internal/portal"
)

var userCols = []string{"id", "handle", "display_name", "pass_hash", "staff", "created_at"}

func scanUser(row pgx.Row) (portal.User, error) {
	var u portal.User
	err := row.Scan(&u.ID, &u.Handle, &u.DisplayName, &u.PasswordHash, &u.Staff, &u.CreatedAt)
	return u, err
}

func (t *pgTx) InsertUser(ctx context.Context, u *portal.User) error {
	q := psql.Insert("users").
		Columns("handle", "display_name", "pass_hash", "staff", "created_at").
		Values(u.Handle, u.DisplayName, u.PasswordHash, u.Staff, u.CreatedAt)
	return translate(qInsert(ctx, t.tx, q, &u.ID), "insert user")
}

func (t *pgTx) getUser(ctx context.Context, where sq.Sqlizer, lock bool, what string) (portal.User, error) {
	q := psql.Select(userCols...).From("users").Where(where)
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	u, err := qRow(ctx, t.tx, q, scanUser)
	return u, translate(err, what)
}

func (t *pgTx) GetUser(ctx context.Context, id int64) (portal.User, error) {
	return t.getUser(ctx, sq.Eq{"id": id}, false, fmt.Sprintf("user %d", id))
}

func (t *pgTx) GetUserByHandle(ctx context.Context, handle string) (portal.User, error) {
	return t.getUser(ctx, sq.Eq{"handle": handle}, false, fmt.Sprintf("user %q", handle))
}

func (t *pgTx) LockUser(ctx context.Context, id int64) (portal.User, error) {
	return t.getUser(ctx, sq.Eq{"id": id}, true, fmt.Sprintf("user %d", id))
}

func (t *pgTx) UpdateUser(ctx context.Context, u portal.User) error {
	q := psql.Update("users").
		Set("handle", u.Handle).
		Set("display_name", u.DisplayName).
		Set("pass_hash", u.PasswordHash).
		Set("staff", u.Staff).
		Where(sq.Eq{"id": u.ID})
	return translate(qUpdate(ctx, t.tx, q), fmt.Sprintf("update user %d", u.ID))
}

func (t *pgTx) ListUsers(ctx context.Context) ([]portal.User, error) {
	out, err := qList(ctx, t.tx, psql.Select(userCols...).From("users").OrderBy("id"), scanUser)
	return out, translate(err, "list users")
}

package pgstore

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"legend-hub/internal/portal"
)

var teamCols = []string{"id", "name", "creator_id", "complete", "member_count", "created_at"}

func scanTeam(row pgx.Row) (portal.Team, error) {
	var tm portal.Team
	err := row.Scan(&tm.ID, &tm.Name, &tm.CreatorID, &tm.Complete, &tm.MemberCount, &tm.CreatedAt)
	return tm, err
}

func (t *pgTx) InsertTeam(ctx context.Context, tm *portal.Team) error {
	q := psql.Insert("teams").
		Columns("name", "creator_id", "complete", "member_count", "created_at").
		Values(tm.Name, tm.CreatorID, tm.Complete, tm.MemberCount, tm.CreatedAt)
	return translate(qInsert(ctx, t.tx, q, &tm.ID), "insert team")
}

func (t *pgTx) getTeam(ctx context.Context, where sq.Sqlizer, lock bool, what string) (portal.Team, error) {
	q := psql.Select(teamCols...).From("teams").Where(where)
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	tm, err := qRow(ctx, t.tx, q, scanTeam)
	return tm, translate(err, what)
}

func (t *pgTx) GetTeam(ctx context.Context, id int64) (portal.Team, error) {
	return t.getTeam(ctx, sq.Eq{"id": id}, false, fmt.Sprintf("team %d", id))
}

func (t *pgTx) LockTeam(ctx context.Context, id int64) (portal.Team, error) {
	return t.getTeam(ctx, sq.Eq{"id": id}, true, fmt.Sprintf("team %d", id))
}

func (t *pgTx) GetTeamByCreator(ctx context.Context, userID int64) (portal.Team, error) {
	return t.getTeam(ctx, sq.Eq{"creator_id": userID}, false, fmt.Sprintf("team created by user %d", userID))
}

func (t *pgTx) UpdateTeam(ctx context.Context, tm portal.Team) error {
	q := psql.Update("teams").
		Set("name", tm.Name).
		Set("complete", tm.Complete).
		Set("member_count", tm.MemberCount).
		Where(sq.Eq{"id": tm.ID})
	return translate(qUpdate(ctx, t.tx, q), fmt.Sprintf("update team %d", tm.ID))
}

// DeleteTeam relies on ON DELETE CASCADE for seats, invitations,
// registrations, standings and fixtures.
func (t *pgTx) DeleteTeam(ctx context.Context, id int64) error {
	return translate(qUpdate(ctx, t.tx, psql.Delete("teams").Where(sq.Eq{"id": id})), fmt.Sprintf("delete team %d", id))
}

func (t *pgTx) ListTeams(ctx context.Context) ([]portal.Team, error) {
	out, err := qList(ctx, t.tx, psql.Select(teamCols...).From("teams").OrderBy("id"), scanTeam)
	return out, translate(err, "list teams")
}

/* ----- role assignments ----- */

var roleCols = []string{"id", "team_id", "user_id", "role", "created_at"}

func scanRole(row pgx.Row) (portal.RoleAssignment, error) {
	var (
		ra   portal.RoleAssignment
		role string
	)
	err := row.Scan(&ra.ID, &ra.TeamID, &ra.UserID, &role, &ra.CreatedAt)
	ra.Role = portal.Role(role)
	return ra, err
}

func (t *pgTx) InsertRoleAssignment(ctx context.Context, ra *portal.RoleAssignment) error {
	q := psql.Insert("role_assignments").
		Columns("team_id", "user_id", "role", "created_at").
		Values(ra.TeamID, ra.UserID, string(ra.Role), ra.CreatedAt)
	return translate(qInsert(ctx, t.tx, q, &ra.ID), "insert role assignment")
}

func (t *pgTx) DeleteRoleAssignment(ctx context.Context, teamID int64, role portal.Role) error {
	q := psql.Delete("role_assignments").Where(sq.Eq{"team_id": teamID, "role": string(role)})
	return translate(qUpdate(ctx, t.tx, q), fmt.Sprintf("role %s in team %d", role, teamID))
}

func (t *pgTx) ListRoleAssignments(ctx context.Context, teamID int64) ([]portal.RoleAssignment, error) {
	q := psql.Select(roleCols...).From("role_assignments").Where(sq.Eq{"team_id": teamID}).OrderBy("id")
	out, err := qList(ctx, t.tx, q, scanRole)
	return out, translate(err, "list role assignments")
}

func (t *pgTx) ListRoleAssignmentsByUser(ctx context.Context, userID int64) ([]portal.RoleAssignment, error) {
	q := psql.Select(roleCols...).From("role_assignments").Where(sq.Eq{"user_id": userID}).OrderBy("id")
	out, err := qList(ctx, t.tx, q, scanRole)
	return out, translate(err, "list role assignments")
}

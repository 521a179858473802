package pgstore

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"legend-hub/internal/portal"
)

var invitationCols = []string{"id", "sender_id", "receiver_id", "team_id", "role", "status", "created_at", "responded_at"}

func scanInvitation(row pgx.Row) (portal.Invitation, error) {
	var (
		inv          portal.Invitation
		role, status string
	)
	err := row.Scan(&inv.ID, &inv.SenderID, &inv.ReceiverID, &inv.TeamID, &role, &status, &inv.CreatedAt, &inv.RespondedAt)
	inv.Role = portal.Role(role)
	inv.Status = portal.InvitationStatus(status)
	return inv, err
}

func (t *pgTx) InsertInvitation(ctx context.Context, inv *portal.Invitation) error {
	q := psql.Insert("invitations").
		Columns("sender_id", "receiver_id", "team_id", "role", "status", "created_at").
		Values(inv.SenderID, inv.ReceiverID, inv.TeamID, string(inv.Role), string(inv.Status), inv.CreatedAt)
	return translate(qInsert(ctx, t.tx, q, &inv.ID), "insert invitation")
}

func (t *pgTx) getInvitation(ctx context.Context, id int64, lock bool) (portal.Invitation, error) {
	q := psql.Select(invitationCols...).From("invitations").Where(sq.Eq{"id": id})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	inv, err := qRow(ctx, t.tx, q, scanInvitation)
	return inv, translate(err, fmt.Sprintf("invitation %d", id))
}

func (t *pgTx) GetInvitation(ctx context.Context, id int64) (portal.Invitation, error) {
	return t.getInvitation(ctx, id, false)
}

func (t *pgTx) LockInvitation(ctx context.Context, id int64) (portal.Invitation, error) {
	return t.getInvitation(ctx, id, true)
}

func (t *pgTx) UpdateInvitation(ctx context.Context, inv portal.Invitation) error {
	q := psql.Update("invitations").
		Set("status", string(inv.Status)).
		Set("responded_at", inv.RespondedAt).
		Where(sq.Eq{"id": inv.ID})
	return translate(qUpdate(ctx, t.tx, q), fmt.Sprintf("update invitation %d", inv.ID))
}

func (t *pgTx) ListTeamInvitations(ctx context.Context, teamID int64) ([]portal.Invitation, error) {
	q := psql.Select(invitationCols...).From("invitations").Where(sq.Eq{"team_id": teamID}).OrderBy("id")
	out, err := qList(ctx, t.tx, q, scanInvitation)
	return out, translate(err, "list invitations")
}

func (t *pgTx) ListUserInvitations(ctx context.Context, userID int64) ([]portal.Invitation, error) {
	q := psql.Select(invitationCols...).From("invitations").
		Where(sq.Or{sq.Eq{"sender_id": userID}, sq.Eq{"receiver_id": userID}}).
		OrderBy("id")
	out, err := qList(ctx, t.tx, q, scanInvitation)
	return out, translate(err, "list invitations")
}

/* ----- notifications ----- */

func scanNotification(row pgx.Row) (portal.Notification, error) {
	var n portal.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Message, &n.CreatedAt)
	return n, err
}

func (t *pgTx) InsertNotification(ctx context.Context, n *portal.Notification) error {
	q := psql.Insert("notifications").
		Columns("user_id", "message", "created_at").
		Values(n.UserID, n.Message, n.CreatedAt)
	return translate(qInsert(ctx, t.tx, q, &n.ID), "insert notification")
}

func (t *pgTx) ListNotifications(ctx context.Context, userID int64) ([]portal.Notification, error) {
	q := psql.Select("id", "user_id", "message", "created_at").From("notifications").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id DESC")
	out, err := qList(ctx, t.tx, q, scanNotification)
	return out, translate(err, "list notifications")
}

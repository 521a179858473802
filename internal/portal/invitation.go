package portal

import (
	"context"
	"fmt"
)

// CreateInvitation offers receiver the vacant role in team on behalf of a
// member. Preconditions are checked in a fixed order and the first failure is
// returned.
func (s *Service) CreateInvitation(ctx context.Context, senderID, receiverID, teamID int64, role Role) (Invitation, error) {
	if !role.Valid() {
		return Invitation{}, errorf(ErrInvalidArgument, "unknown role %q", role)
	}
	inv := Invitation{
		SenderID:   senderID,
		ReceiverID: receiverID,
		TeamID:     teamID,
		Role:       role,
		Status:     InvitationPending,
		CreatedAt:  s.now(),
	}

	err := s.store.WithTx(ctx, func(tx Tx) error {
		team, err := tx.LockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if _, err := tx.GetUser(ctx, receiverID); err != nil {
			return err
		}

		if senderID == receiverID {
			return errorf(ErrInvalidArgument, "cannot invite yourself")
		}
		roles, err := tx.ListRoleAssignments(ctx, teamID)
		if err != nil {
			return err
		}
		if !isMember(team, roles, senderID) {
			return errorf(ErrForbidden, "only members of %s can send invitations", team.Name)
		}
		for _, ra := range roles {
			if ra.Role == role {
				return errorf(ErrConflict, "role %s is already filled", role)
			}
		}

		invs, err := tx.ListTeamInvitations(ctx, teamID)
		if err != nil {
			return err
		}
		if other, ok := activeForRole(invs, roles, role); ok {
			return errorf(ErrConflict, "invitation %d is already open for %s", other.ID, role)
		}

		held, err := tx.ListRoleAssignmentsByUser(ctx, receiverID)
		if err != nil {
			return err
		}
		if len(held) > 0 {
			return errorf(ErrConflict, "receiver already plays for team %d", held[0].TeamID)
		}
		for _, other := range invs {
			if other.ReceiverID == receiverID && other.Status == InvitationPending {
				return errorf(ErrConflict, "receiver already has pending invitation %d to this team", other.ID)
			}
		}

		if team.MemberCount >= MaxRosterSize {
			return errorf(ErrConflict, "team already has %d members", team.MemberCount)
		}
		if role.IsSub() && !team.Complete {
			return errorf(ErrInvalidState, "substitutes are recruited only after every main role is filled")
		}

		if err := tx.InsertInvitation(ctx, &inv); err != nil {
			return err
		}
		msg := fmt.Sprintf("You have received an invitation to join %s as %s.", team.Name, role)
		if err := s.notify(ctx, tx, receiverID, msg); err != nil {
			return err
		}
		return s.audit(ctx, tx, senderID, "create_invitation", fmt.Sprintf("invitation_id=%d team_id=%d receiver_id=%d role=%s", inv.ID, teamID, receiverID, role))
	})
	if err != nil {
		return Invitation{}, err
	}
	s.log.Info("invitation created", "invitation_id", inv.ID, "team_id", teamID, "role", role)
	return inv, nil
}

// activeForRole finds an invitation that still blocks role: a pending one, or
// an accepted one whose receiver still occupies the seat.
func activeForRole(invs []Invitation, roles []RoleAssignment, role Role) (Invitation, bool) {
	for _, inv := range invs {
		if inv.Role != role {
			continue
		}
		switch inv.Status {
		case InvitationPending:
			return inv, true
		case InvitationAccepted:
			for _, ra := range roles {
				if ra.Role == role && ra.UserID == inv.ReceiverID {
					return inv, true
				}
			}
		}
	}
	return Invitation{}, false
}

// RespondToInvitation moves a pending invitation to Accepted or Declined. The
// status change, the new seat and the notifications commit together.
func (s *Service) RespondToInvitation(ctx context.Context, invitationID, actingUserID int64, decision InvitationStatus) (Invitation, error) {
	if decision != InvitationAccepted && decision != InvitationDeclined {
		return Invitation{}, errorf(ErrInvalidArgument, "decision must be %s or %s", InvitationAccepted, InvitationDeclined)
	}

	var inv Invitation
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		if inv, err = tx.LockInvitation(ctx, invitationID); err != nil {
			return err
		}
		if inv.Status != InvitationPending {
			return errorf(ErrInvalidState, "invitation %d is already %s", inv.ID, inv.Status)
		}
		if actingUserID != inv.ReceiverID {
			return errorf(ErrForbidden, "only the receiver can respond to invitation %d", inv.ID)
		}

		team, err := tx.LockTeam(ctx, inv.TeamID)
		if err != nil {
			return err
		}
		receiver, err := tx.GetUser(ctx, inv.ReceiverID)
		if err != nil {
			return err
		}

		now := s.now()
		inv.Status = decision
		inv.RespondedAt = &now
		if err := tx.UpdateInvitation(ctx, inv); err != nil {
			return err
		}

		var msg string
		if decision == InvitationAccepted {
			if err := s.addRole(ctx, tx, &team, inv.ReceiverID, inv.Role); err != nil {
				return err
			}
			msg = fmt.Sprintf("%s has accepted your invitation to join %s as %s.", receiver.Handle, team.Name, inv.Role)
		} else {
			msg = fmt.Sprintf("%s has declined your invitation to join %s as %s.", receiver.Handle, team.Name, inv.Role)
		}
		if err := s.notify(ctx, tx, inv.SenderID, msg); err != nil {
			return err
		}
		return s.audit(ctx, tx, actingUserID, "respond_invitation", fmt.Sprintf("invitation_id=%d status=%s", inv.ID, decision))
	})
	if err != nil {
		return Invitation{}, err
	}
	s.log.Info("invitation answered", "invitation_id", inv.ID, "status", inv.Status)
	return inv, nil
}

// ListInvitations returns invitations actor sent or received.
func (s *Service) ListInvitations(ctx context.Context, actor Actor) ([]Invitation, error) {
	var out []Invitation
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListUserInvitations(ctx, actor.UserID)
		return err
	})
	return Filter[Invitation](InvitationAccess{}, actor, out), err
}

func (s *Service) GetInvitation(ctx context.Context, actor Actor, id int64) (Invitation, error) {
	var inv Invitation
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		inv, err = tx.GetInvitation(ctx, id)
		return err
	})
	if err != nil {
		return Invitation{}, err
	}
	if !(InvitationAccess{}).CanRead(actor, inv) {
		return Invitation{}, errorf(ErrForbidden, "invitation %d belongs to other users", id)
	}
	return inv, nil
}

// Notifications returns userID's notifications, newest first.
func (s *Service) Notifications(ctx context.Context, actor Actor, userID int64) ([]Notification, error) {
	if actor.UserID != userID && !actor.Staff {
		return nil, errorf(ErrForbidden, "notifications are private")
	}
	var out []Notification
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListNotifications(ctx, userID)
		return err
	})
	return Filter[Notification](NotificationAccess{}, actor, out), err
}

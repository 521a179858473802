package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DeriveCompleteness computes a team's derived fields from its role
// assignments: complete iff every main role is held, memberCount is the number
// of filled seats.
func DeriveCompleteness(roles []RoleAssignment) (complete bool, memberCount int) {
	held := make(map[Role]bool, len(roles))
	for _, ra := range roles {
		held[ra.Role] = true
	}
	mains := 0
	for _, r := range MainRoles {
		if held[r] {
			mains++
		}
	}
	return mains == len(MainRoles), len(roles)
}

// syncTeam recomputes and persists team's derived fields. Every role insert or
// delete calls it inside the same transaction.
func (s *Service) syncTeam(ctx context.Context, tx Tx, team *Team) error {
	roles, err := tx.ListRoleAssignments(ctx, team.ID)
	if err != nil {
		return err
	}
	team.Complete, team.MemberCount = DeriveCompleteness(roles)
	return tx.UpdateTeam(ctx, *team)
}

// ensureUnassigned is the single authority on the one-team-per-user rule. It
// locks the user row first so two transactions seating the same user cannot
// both pass.
func (s *Service) ensureUnassigned(ctx context.Context, tx Tx, userID int64) error {
	if _, err := tx.LockUser(ctx, userID); err != nil {
		return err
	}
	held, err := tx.ListRoleAssignmentsByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(held) > 0 {
		return errorf(ErrConflict, "user %d already holds %s in team %d", userID, held[0].Role, held[0].TeamID)
	}
	if _, err := tx.GetTeamByCreator(ctx, userID); err == nil {
		return errorf(ErrConflict, "user %d already created a team", userID)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// addRole seats user in team. team must have been read with LockTeam.
func (s *Service) addRole(ctx context.Context, tx Tx, team *Team, userID int64, role Role) error {
	if !role.Valid() {
		return errorf(ErrInvalidArgument, "unknown role %q", role)
	}
	roles, err := tx.ListRoleAssignments(ctx, team.ID)
	if err != nil {
		return err
	}
	for _, ra := range roles {
		if ra.Role == role {
			return errorf(ErrConflict, "role %s already filled in team %d", role, team.ID)
		}
	}
	// The creator's own seat is added by CreateTeam after the team row exists.
	if userID != team.CreatorID {
		if err := s.ensureUnassigned(ctx, tx, userID); err != nil {
			return err
		}
	} else if len(roles) > 0 {
		return errorf(ErrConflict, "creator already seated in team %d", team.ID)
	}
	if err := tx.InsertRoleAssignment(ctx, &RoleAssignment{
		TeamID:    team.ID,
		UserID:    userID,
		Role:      role,
		CreatedAt: s.now(),
	}); err != nil {
		return err
	}
	return s.syncTeam(ctx, tx, team)
}

// CreateTeam founds a team with the creator seated in initialRole.
func (s *Service) CreateTeam(ctx context.Context, creatorID int64, name string, initialRole Role) (Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Team{}, errorf(ErrInvalidArgument, "team name is required")
	}
	if !initialRole.IsMain() {
		return Team{}, errorf(ErrInvalidArgument, "creator must take a main role, got %q", initialRole)
	}

	team := Team{Name: name, CreatorID: creatorID, CreatedAt: s.now()}
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if err := s.ensureUnassigned(ctx, tx, creatorID); err != nil {
			return err
		}
		if err := tx.InsertTeam(ctx, &team); err != nil {
			return err
		}
		if err := s.addRole(ctx, tx, &team, creatorID, initialRole); err != nil {
			return err
		}
		return s.audit(ctx, tx, creatorID, "create_team", fmt.Sprintf("team_id=%d role=%s", team.ID, initialRole))
	})
	if err != nil {
		return Team{}, err
	}
	s.log.Info("team created", "team_id", team.ID, "user_id", creatorID)
	return team, nil
}

// AddRole seats user in team directly, bypassing invitations. Staff only.
func (s *Service) AddRole(ctx context.Context, actor Actor, teamID, userID int64, role Role) (Team, error) {
	if !actor.Staff {
		return Team{}, errorf(ErrForbidden, "only staff can seat players directly")
	}
	var team Team
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		if team, err = tx.LockTeam(ctx, teamID); err != nil {
			return err
		}
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		if err := s.addRole(ctx, tx, &team, userID, role); err != nil {
			return err
		}
		if err := s.notify(ctx, tx, userID, fmt.Sprintf("You were added to %s as %s.", team.Name, role)); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor.UserID, "admin_add_role", fmt.Sprintf("team_id=%d user_id=%d role=%s", teamID, userID, role))
	})
	return team, err
}

// RemoveRole vacates a seat. The creator may remove any other member and a
// member may leave; the creator's own seat goes only with the team.
func (s *Service) RemoveRole(ctx context.Context, actor Actor, teamID int64, role Role) (Team, error) {
	var team Team
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		if team, err = tx.LockTeam(ctx, teamID); err != nil {
			return err
		}
		roles, err := tx.ListRoleAssignments(ctx, teamID)
		if err != nil {
			return err
		}
		var seat *RoleAssignment
		for i := range roles {
			if roles[i].Role == role {
				seat = &roles[i]
				break
			}
		}
		if seat == nil {
			return errorf(ErrNotFound, "role %s is vacant in team %d", role, teamID)
		}
		if actor.UserID != team.CreatorID && actor.UserID != seat.UserID && !actor.Staff {
			return errorf(ErrForbidden, "only the creator or the seat holder can vacate %s", role)
		}
		if seat.UserID == team.CreatorID {
			return errorf(ErrInvalidState, "the creator's seat is released by deleting the team")
		}
		if err := tx.DeleteRoleAssignment(ctx, teamID, role); err != nil {
			return err
		}
		if err := s.syncTeam(ctx, tx, &team); err != nil {
			return err
		}
		if actor.UserID != seat.UserID {
			if err := s.notify(ctx, tx, seat.UserID, fmt.Sprintf("You were removed from %s.", team.Name)); err != nil {
				return err
			}
		} else if err := s.notify(ctx, tx, team.CreatorID, fmt.Sprintf("A player left the %s seat of %s.", role, team.Name)); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor.UserID, "remove_role", fmt.Sprintf("team_id=%d user_id=%d role=%s", teamID, seat.UserID, role))
	})
	return team, err
}

// RenameTeam changes a team's name. Creator only.
func (s *Service) RenameTeam(ctx context.Context, actor Actor, teamID int64, name string) (Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Team{}, errorf(ErrInvalidArgument, "team name is required")
	}
	var team Team
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		if team, err = tx.LockTeam(ctx, teamID); err != nil {
			return err
		}
		if actor.UserID != team.CreatorID {
			return errorf(ErrForbidden, "only the creator can rename a team")
		}
		team.Name = name
		if err := tx.UpdateTeam(ctx, team); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor.UserID, "rename_team", fmt.Sprintf("team_id=%d name=%s", teamID, name))
	})
	return team, err
}

// DeleteTeam removes a team with its seats, invitations, registrations and
// fixtures. The creator or staff may do it.
func (s *Service) DeleteTeam(ctx context.Context, actor Actor, teamID int64) error {
	return s.store.WithTx(ctx, func(tx Tx) error {
		team, err := tx.LockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if !(TeamAccess{}).CanWrite(actor, team) {
			return errorf(ErrForbidden, "only the creator can delete a team")
		}
		roles, err := tx.ListRoleAssignments(ctx, teamID)
		if err != nil {
			return err
		}
		if err := tx.DeleteTeam(ctx, teamID); err != nil {
			return err
		}
		for _, ra := range roles {
			if ra.UserID == actor.UserID {
				continue
			}
			if err := s.notify(ctx, tx, ra.UserID, fmt.Sprintf("Team %s was disbanded.", team.Name)); err != nil {
				return err
			}
		}
		return s.audit(ctx, tx, actor.UserID, "delete_team", fmt.Sprintf("team_id=%d", teamID))
	})
}

// TeamView is a team together with its filled seats.
type TeamView struct {
	Team
	Roster []RoleAssignment `json:"roster"`
}

func (s *Service) GetTeam(ctx context.Context, teamID int64) (TeamView, error) {
	var v TeamView
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		if v.Team, err = tx.GetTeam(ctx, teamID); err != nil {
			return err
		}
		v.Roster, err = tx.ListRoleAssignments(ctx, teamID)
		return err
	})
	return v, err
}

func (s *Service) ListTeams(ctx context.Context) ([]Team, error) {
	var out []Team
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListTeams(ctx)
		return err
	})
	return out, err
}

// TeamForUser returns the team userID plays for or created.
func (s *Service) TeamForUser(ctx context.Context, userID int64) (TeamView, error) {
	var teamID int64
	err := s.store.WithTx(ctx, func(tx Tx) error {
		held, err := tx.ListRoleAssignmentsByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(held) > 0 {
			teamID = held[0].TeamID
			return nil
		}
		t, err := tx.GetTeamByCreator(ctx, userID)
		if err != nil {
			return errorf(ErrNotFound, "user %d has no team", userID)
		}
		teamID = t.ID
		return nil
	})
	if err != nil {
		return TeamView{}, err
	}
	return s.GetTeam(ctx, teamID)
}

// isMember reports whether userID sits in team or created it.
func isMember(team Team, roles []RoleAssignment, userID int64) bool {
	if team.CreatorID == userID {
		return true
	}
	for _, ra := range roles {
		if ra.UserID == userID {
			return true
		}
	}
	return false
}

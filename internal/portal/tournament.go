package portal

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CreateTournament opens a new tournament. Staff only.
func (s *Service) CreateTournament(ctx context.Context, actor Actor, title string, start, end time.Time, limit int) (Tournament, error) {
	t := Tournament{
		Title:     strings.TrimSpace(title),
		CreatedAt: s.now(),
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Limit:     limit,
	}
	if !(TournamentAccess{}).CanWrite(actor, t) {
		return Tournament{}, errorf(ErrForbidden, "only staff can create tournaments")
	}
	if t.Title == "" {
		return Tournament{}, errorf(ErrInvalidArgument, "title is required")
	}
	if !t.StartTime.Before(t.EndTime) {
		return Tournament{}, errorf(ErrInvalidArgument, "start must be before end")
	}
	if limit < 0 {
		return Tournament{}, errorf(ErrInvalidArgument, "limit must not be negative")
	}

	err := s.store.WithTx(ctx, func(tx Tx) error {
		if err := tx.InsertTournament(ctx, &t); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor.UserID, "create_tournament", fmt.Sprintf("tournament_id=%d title=%s", t.ID, t.Title))
	})
	if err != nil {
		return Tournament{}, err
	}
	s.log.Info("tournament created", "tournament_id", t.ID, "start", t.StartTime, "end", t.EndTime)
	return t, nil
}

// Register admits a complete team into a tournament. Only the team's creator
// may do it, and only while the tournament window is open. The registration is
// write-once.
func (s *Service) Register(ctx context.Context, teamID, tournamentID, actingUserID int64) (Registration, error) {
	reg := Registration{TeamID: teamID, TournamentID: tournamentID}
	err := s.store.WithTx(ctx, func(tx Tx) error {
		team, err := tx.LockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		tour, err := tx.LockTournament(ctx, tournamentID)
		if err != nil {
			return err
		}

		if actingUserID != team.CreatorID {
			return errorf(ErrForbidden, "only the creator of %s can register it", team.Name)
		}
		if !team.Complete {
			return errorf(ErrInvalidState, "team %s has not filled every main role", team.Name)
		}
		now := s.now()
		if !tour.Open(now) {
			return errorf(ErrOutOfWindow, "registration for %s is open from %s to %s",
				tour.Title, tour.StartTime.Format(time.RFC3339), tour.EndTime.Format(time.RFC3339))
		}
		regs, err := tx.ListRegistrations(ctx, tournamentID)
		if err != nil {
			return err
		}
		for _, r := range regs {
			if r.TeamID == teamID {
				return errorf(ErrConflict, "team %s is already registered", team.Name)
			}
		}
		if tour.Limit > 0 && len(regs) >= tour.Limit {
			return errorf(ErrConflict, "tournament %s is full", tour.Title)
		}

		reg.CreatedAt = now
		if err := tx.InsertRegistration(ctx, &reg); err != nil {
			return err
		}
		if err := tx.InsertStanding(ctx, &Standing{
			TeamID:       teamID,
			TournamentID: tournamentID,
			RegisteredAt: now,
		}); err != nil {
			return err
		}

		roles, err := tx.ListRoleAssignments(ctx, teamID)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("%s is registered for %s.", team.Name, tour.Title)
		for _, ra := range roles {
			if err := s.notify(ctx, tx, ra.UserID, msg); err != nil {
				return err
			}
		}
		return s.audit(ctx, tx, actingUserID, "register_team", fmt.Sprintf("team_id=%d tournament_id=%d", teamID, tournamentID))
	})
	if err != nil {
		return Registration{}, err
	}
	s.log.Info("team registered", "team_id", teamID, "tournament_id", tournamentID)
	return reg, nil
}

// TournamentView is a tournament with the teams registered for it.
type TournamentView struct {
	Tournament
	Teams []Team `json:"teams"`
}

func (s *Service) GetTournament(ctx context.Context, id int64) (TournamentView, error) {
	var v TournamentView
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		if v.Tournament, err = tx.GetTournament(ctx, id); err != nil {
			return err
		}
		regs, err := tx.ListRegistrations(ctx, id)
		if err != nil {
			return err
		}
		v.Teams = make([]Team, 0, len(regs))
		for _, r := range regs {
			t, err := tx.GetTeam(ctx, r.TeamID)
			if err != nil {
				return err
			}
			v.Teams = append(v.Teams, t)
		}
		return nil
	})
	return v, err
}

func (s *Service) ListTournaments(ctx context.Context) ([]Tournament, error) {
	var out []Tournament
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListTournaments(ctx)
		return err
	})
	return out, err
}

// Registrations lists a tournament's registrations. Staff only.
func (s *Service) Registrations(ctx context.Context, actor Actor, tournamentID int64) ([]Registration, error) {
	var out []Registration
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.GetTournament(ctx, tournamentID); err != nil {
			return err
		}
		var err error
		out, err = tx.ListRegistrations(ctx, tournamentID)
		return err
	})
	return Filter[Registration](RegistrationAccess{}, actor, out), err
}

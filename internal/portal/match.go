package portal

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
)

func defaultShuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// ScheduleFixture pairs two registered teams at a given time. Staff only.
func (s *Service) ScheduleFixture(ctx context.Context, actor Actor, tournamentID, team1ID, team2ID int64, at time.Time) (Fixture, error) {
	if !actor.Staff {
		return Fixture{}, errorf(ErrForbidden, "only staff can schedule fixtures")
	}
	if team1ID == team2ID {
		return Fixture{}, errorf(ErrInvalidArgument, "a team cannot play itself")
	}
	f := Fixture{TournamentID: tournamentID, Team1ID: team1ID, Team2ID: team2ID, Time: at.UTC()}
	err := s.store.WithTx(ctx, func(tx Tx) error {
		tour, err := tx.GetTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		regs, err := tx.ListRegistrations(ctx, tournamentID)
		if err != nil {
			return err
		}
		for _, id := range []int64{team1ID, team2ID} {
			if !registered(regs, id) {
				return errorf(ErrInvalidState, "team %d is not registered for %s", id, tour.Title)
			}
		}
		return s.insertFixture(ctx, tx, actor, tour, &f)
	})
	if err != nil {
		return Fixture{}, err
	}
	return f, nil
}

// AutoSchedule shuffles the tournament's registered teams and pairs them off,
// one fixture every spacing starting at first. With an odd number of teams the
// one left over after shuffling gets no fixture.
func (s *Service) AutoSchedule(ctx context.Context, actor Actor, tournamentID int64, first time.Time, spacing time.Duration) ([]Fixture, error) {
	if !actor.Staff {
		return nil, errorf(ErrForbidden, "only staff can schedule fixtures")
	}
	if spacing < 0 {
		return nil, errorf(ErrInvalidArgument, "spacing must not be negative")
	}
	var out []Fixture
	err := s.store.WithTx(ctx, func(tx Tx) error {
		tour, err := tx.LockTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		regs, err := tx.ListRegistrations(ctx, tournamentID)
		if err != nil {
			return err
		}
		if len(regs) < 2 {
			return errorf(ErrInvalidState, "%s needs at least two registered teams", tour.Title)
		}
		teams := make([]int64, len(regs))
		for i, r := range regs {
			teams[i] = r.TeamID
		}
		s.rand(len(teams), func(i, j int) { teams[i], teams[j] = teams[j], teams[i] })
		if len(teams)%2 != 0 {
			s.log.Warn("odd number of teams, one sits out", "tournament_id", tournamentID, "team_id", teams[len(teams)-1])
			teams = teams[:len(teams)-1]
		}

		at := first.UTC()
		for i := 0; i < len(teams); i += 2 {
			f := Fixture{TournamentID: tournamentID, Team1ID: teams[i], Team2ID: teams[i+1], Time: at}
			if err := s.insertFixture(ctx, tx, actor, tour, &f); err != nil {
				return err
			}
			out = append(out, f)
			at = at.Add(spacing)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("fixtures scheduled", "tournament_id", tournamentID, "count", len(out))
	return out, nil
}

func (s *Service) insertFixture(ctx context.Context, tx Tx, actor Actor, tour Tournament, f *Fixture) error {
	if err := tx.InsertFixture(ctx, f); err != nil {
		return err
	}
	for _, pair := range [][2]int64{{f.Team1ID, f.Team2ID}, {f.Team2ID, f.Team1ID}} {
		team, err := tx.GetTeam(ctx, pair[0])
		if err != nil {
			return err
		}
		opp, err := tx.GetTeam(ctx, pair[1])
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("%s plays %s in %s at %s.", team.Name, opp.Name, tour.Title, f.Time.Format(time.RFC3339))
		if err := s.notify(ctx, tx, team.CreatorID, msg); err != nil {
			return err
		}
	}
	return s.audit(ctx, tx, actor.UserID, "schedule_fixture",
		fmt.Sprintf("fixture_id=%d tournament_id=%d team_1=%d team_2=%d", f.ID, f.TournamentID, f.Team1ID, f.Team2ID))
}

func registered(regs []Registration, teamID int64) bool {
	for _, r := range regs {
		if r.TeamID == teamID {
			return true
		}
	}
	return false
}

// CastVote records userID's vote for side. Each user votes once per fixture.
func (s *Service) CastVote(ctx context.Context, fixtureID, userID int64, side Side) (Fixture, error) {
	if !side.Valid() {
		return Fixture{}, errorf(ErrInvalidArgument, "side must be 1 or 2")
	}
	var f Fixture
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		var err error
		if f, err = tx.LockFixture(ctx, fixtureID); err != nil {
			return err
		}
		now := s.now()
		if f.Finalized || f.WindowClosed(now) {
			return errorf(ErrOutOfWindow, "voting on fixture %d closed at %s", f.ID, f.Time.Add(ResultWindow).Format(time.RFC3339))
		}
		if err := tx.InsertVote(ctx, &Vote{FixtureID: f.ID, UserID: userID, Side: side, CreatedAt: now}); err != nil {
			return err
		}
		if side == SideTeam1 {
			f.Votes1++
		} else {
			f.Votes2++
		}
		return tx.UpdateFixture(ctx, f)
	})
	return f, err
}

// UploadEvidence stores a result screenshot for side and counts it as one
// point. Each side has a single slot: a new upload replaces the image, and an
// upload repeating the slot's current key changes nothing.
func (s *Service) UploadEvidence(ctx context.Context, fixtureID, userID int64, side Side, imageRef, key string) (Fixture, error) {
	f, _, err := s.ReplaceEvidence(ctx, fixtureID, userID, side, imageRef, key)
	return f, err
}

// ReplaceEvidence is UploadEvidence that also returns the image reference the
// upload displaced, or "" when the slot was empty or nothing changed.
func (s *Service) ReplaceEvidence(ctx context.Context, fixtureID, userID int64, side Side, imageRef, key string) (Fixture, string, error) {
	if !side.Valid() {
		return Fixture{}, "", errorf(ErrInvalidArgument, "side must be 1 or 2")
	}
	key = strings.TrimSpace(key)
	if imageRef == "" || key == "" {
		return Fixture{}, "", errorf(ErrInvalidArgument, "image and idempotency key are required")
	}

	var f Fixture
	var counted bool
	var previous string
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		if f, err = tx.LockFixture(ctx, fixtureID); err != nil {
			return err
		}
		if f.Finalized || f.WindowClosed(s.now()) {
			return errorf(ErrOutOfWindow, "evidence for fixture %d closed at %s", f.ID, f.Time.Add(ResultWindow).Format(time.RFC3339))
		}
		team, err := tx.GetTeam(ctx, f.TeamFor(side))
		if err != nil {
			return err
		}
		if userID != team.CreatorID {
			return errorf(ErrForbidden, "only the creator of %s can upload its evidence", team.Name)
		}

		slotKey := &f.EvidenceKey1
		if side == SideTeam2 {
			slotKey = &f.EvidenceKey2
		}
		if *slotKey == key {
			return nil
		}
		*slotKey = key
		if side == SideTeam1 {
			f.Score1++
			previous, f.Image1 = f.Image1, imageRef
		} else {
			f.Score2++
			previous, f.Image2 = f.Image2, imageRef
		}
		counted = true
		if err := tx.UpdateFixture(ctx, f); err != nil {
			return err
		}
		return s.audit(ctx, tx, userID, "upload_evidence", fmt.Sprintf("fixture_id=%d side=%d", f.ID, side))
	})
	if err != nil {
		return Fixture{}, "", err
	}
	if counted {
		s.log.Info("evidence uploaded", "fixture_id", f.ID, "side", side, "user_id", userID)
	}
	return f, previous, nil
}

// FinalizeIfDue settles a fixture into standings once its window has closed.
// Calling it again afterwards is a no-op.
func (s *Service) FinalizeIfDue(ctx context.Context, fixtureID int64) (Fixture, error) {
	var f Fixture
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		if f, err = tx.LockFixture(ctx, fixtureID); err != nil {
			return err
		}
		return s.finalizeLocked(ctx, tx, &f)
	})
	return f, err
}

// finalizeLocked applies f's result. f must have been read with LockFixture.
func (s *Service) finalizeLocked(ctx context.Context, tx Tx, f *Fixture) error {
	now := s.now()
	if f.Finalized || !f.WindowClosed(now) {
		return nil
	}
	st1, err := tx.GetStanding(ctx, f.Team1ID, f.TournamentID)
	if err != nil {
		return err
	}
	st2, err := tx.GetStanding(ctx, f.Team2ID, f.TournamentID)
	if err != nil {
		return err
	}

	switch {
	case f.Score1 > f.Score2:
		st1.Wins++
		st2.Losses++
	case f.Score1 < f.Score2:
		st2.Wins++
		st1.Losses++
	default:
		st1.Draws++
		st2.Draws++
	}
	st1.GamesPlayed++
	st2.GamesPlayed++
	st1.Score += f.Score1
	st2.Score += f.Score2

	if err := tx.UpdateStanding(ctx, st1); err != nil {
		return err
	}
	if err := tx.UpdateStanding(ctx, st2); err != nil {
		return err
	}
	f.Finalized = true
	f.FinalizedAt = &now
	if err := tx.UpdateFixture(ctx, *f); err != nil {
		return err
	}
	s.log.Info("fixture finalized", "fixture_id", f.ID, "score_1", f.Score1, "score_2", f.Score2)
	return s.audit(ctx, tx, 0, "finalize_fixture", fmt.Sprintf("fixture_id=%d score=%d-%d", f.ID, f.Score1, f.Score2))
}

// settleDue finalizes every fixture in fs whose window has closed, in place.
func (s *Service) settleDue(ctx context.Context, tx Tx, fs []Fixture) error {
	now := s.now()
	for i := range fs {
		if fs[i].Finalized || !fs[i].WindowClosed(now) {
			continue
		}
		locked, err := tx.LockFixture(ctx, fs[i].ID)
		if err != nil {
			return err
		}
		if err := s.finalizeLocked(ctx, tx, &locked); err != nil {
			return err
		}
		fs[i] = locked
	}
	return nil
}

// GetFixture reads a fixture, finalizing it first when due.
func (s *Service) GetFixture(ctx context.Context, id int64) (Fixture, error) {
	var fs []Fixture
	err := s.store.WithTx(ctx, func(tx Tx) error {
		f, err := tx.GetFixture(ctx, id)
		if err != nil {
			return err
		}
		fs = []Fixture{f}
		return s.settleDue(ctx, tx, fs)
	})
	if err != nil {
		return Fixture{}, err
	}
	return fs[0], nil
}

// ListFixtures returns a tournament's fixtures by time, finalizing due ones.
func (s *Service) ListFixtures(ctx context.Context, tournamentID int64) ([]Fixture, error) {
	var fs []Fixture
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.GetTournament(ctx, tournamentID); err != nil {
			return err
		}
		var err error
		if fs, err = tx.ListFixtures(ctx, tournamentID); err != nil {
			return err
		}
		return s.settleDue(ctx, tx, fs)
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(fs, func(a, b Fixture) int { return a.Time.Compare(b.Time) })
	return fs, nil
}

// Standings returns the tournament table after settling due fixtures, best
// record first.
func (s *Service) Standings(ctx context.Context, tournamentID int64) ([]Standing, error) {
	var out []Standing
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.GetTournament(ctx, tournamentID); err != nil {
			return err
		}
		fs, err := tx.ListFixtures(ctx, tournamentID)
		if err != nil {
			return err
		}
		if err := s.settleDue(ctx, tx, fs); err != nil {
			return err
		}
		out, err = tx.ListStandings(ctx, tournamentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b Standing) int {
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamID, b.TeamID)
	})
	return out, nil
}

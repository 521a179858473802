package portal

import "context"

// Store runs units of work. fn's writes are committed together when it
// returns nil and discarded otherwise.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the repository surface available inside a transaction.
//
// Get* and List* return ErrNotFound (wrapped) for missing rows. Lock* read the
// same row but hold it for the rest of the transaction so concurrent writers on
// that row serialize. Insert* fill in the generated ID and return ErrConflict
// when a uniqueness constraint is violated.
type Tx interface {
	InsertUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByHandle(ctx context.Context, handle string) (User, error)
	LockUser(ctx context.Context, id int64) (User, error)
	UpdateUser(ctx context.Context, u User) error
	ListUsers(ctx context.Context) ([]User, error)

	InsertTeam(ctx context.Context, t *Team) error
	GetTeam(ctx context.Context, id int64) (Team, error)
	LockTeam(ctx context.Context, id int64) (Team, error)
	GetTeamByCreator(ctx context.Context, userID int64) (Team, error)
	UpdateTeam(ctx context.Context, t Team) error
	DeleteTeam(ctx context.Context, id int64) error
	ListTeams(ctx context.Context) ([]Team, error)

	InsertRoleAssignment(ctx context.Context, ra *RoleAssignment) error
	DeleteRoleAssignment(ctx context.Context, teamID int64, role Role) error
	ListRoleAssignments(ctx context.Context, teamID int64) ([]RoleAssignment, error)
	ListRoleAssignmentsByUser(ctx context.Context, userID int64) ([]RoleAssignment, error)

	InsertInvitation(ctx context.Context, inv *Invitation) error
	GetInvitation(ctx context.Context, id int64) (Invitation, error)
	LockInvitation(ctx context.Context, id int64) (Invitation, error)
	UpdateInvitation(ctx context.Context, inv Invitation) error
	ListTeamInvitations(ctx context.Context, teamID int64) ([]Invitation, error)
	ListUserInvitations(ctx context.Context, userID int64) ([]Invitation, error)

	InsertNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, userID int64) ([]Notification, error)

	InsertTournament(ctx context.Context, t *Tournament) error
	GetTournament(ctx context.Context, id int64) (Tournament, error)
	LockTournament(ctx context.Context, id int64) (Tournament, error)
	ListTournaments(ctx context.Context) ([]Tournament, error)

	InsertRegistration(ctx context.Context, r *Registration) error
	ListRegistrations(ctx context.Context, tournamentID int64) ([]Registration, error)

	InsertFixture(ctx context.Context, f *Fixture) error
	GetFixture(ctx context.Context, id int64) (Fixture, error)
	LockFixture(ctx context.Context, id int64) (Fixture, error)
	UpdateFixture(ctx context.Context, f Fixture) error
	ListFixtures(ctx context.Context, tournamentID int64) ([]Fixture, error)
	InsertVote(ctx context.Context, v *Vote) error

	InsertStanding(ctx context.Context, s *Standing) error
	GetStanding(ctx context.Context, teamID, tournamentID int64) (Standing, error)
	UpdateStanding(ctx context.Context, s Standing) error
	ListStandings(ctx context.Context, tournamentID int64) ([]Standing, error)

	InsertAudit(ctx context.Context, e *AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]AuditEntry, error)
}

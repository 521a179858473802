package portal

import (
	"fmt"
	"strings"
	"time"
)

// Role is a seat on a team roster.
type Role string

const (
	RoleTopLane Role = "TopLane"
	RoleMidLane Role = "MidLane"
	RoleJungle  Role = "Jungle"
	RoleBotLane Role = "BotLane"
	RoleSupport Role = "Support"
	RoleSub1    Role = "Sub1"
	RoleSub2    Role = "Sub2"
)

// MainRoles are the five on-field positions a team needs to be complete.
var MainRoles = []Role{RoleTopLane, RoleMidLane, RoleJungle, RoleBotLane, RoleSupport}

// SubRoles can only be recruited once every main role is filled.
var SubRoles = []Role{RoleSub1, RoleSub2}

// MaxRosterSize is the number of seats a team has.
const MaxRosterSize = 7

func (r Role) IsMain() bool {
	for _, m := range MainRoles {
		if r == m {
			return true
		}
	}
	return false
}

func (r Role) IsSub() bool {
	return r == RoleSub1 || r == RoleSub2
}

func (r Role) Valid() bool {
	return r.IsMain() || r.IsSub()
}

// ParseRole accepts the canonical name in any letter case.
func ParseRole(s string) (Role, error) {
	for _, r := range append(append([]Role{}, MainRoles...), SubRoles...) {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, s)
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "Pending"
	InvitationAccepted InvitationStatus = "Accepted"
	InvitationDeclined InvitationStatus = "Declined"
)

// Side selects one of the two teams of a fixture.
type Side int

const (
	SideTeam1 Side = 1
	SideTeam2 Side = 2
)

func (s Side) Valid() bool {
	return s == SideTeam1 || s == SideTeam2
}

// ResultWindow is how long after its scheduled time a fixture accepts votes
// and evidence. Past it the fixture is finalized on the next read.
const ResultWindow = 48 * time.Hour

type User struct {
	ID           int64     `json:"id"`
	Handle       string    `json:"handle"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Staff        bool      `json:"staff"`
	CreatedAt    time.Time `json:"created_at"`
}

type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	CreatorID   int64     `json:"creator_id"`
	Complete    bool      `json:"complete"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type RoleAssignment struct {
	ID        int64     `json:"id"`
	TeamID    int64     `json:"team_id"`
	UserID    int64     `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Invitation struct {
	ID          int64            `json:"id"`
	SenderID    int64            `json:"sender_id"`
	ReceiverID  int64            `json:"receiver_id"`
	TeamID      int64            `json:"team_id"`
	Role        Role             `json:"role"`
	Status      InvitationStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type Tournament struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Limit     int       `json:"limit"` // 0 means no cap on registrations
}

// Open reports whether registrations are accepted at t (bounds inclusive).
func (t Tournament) Open(at time.Time) bool {
	return !at.Before(t.StartTime) && !at.After(t.EndTime)
}

type Registration struct {
	ID           int64     `json:"id"`
	TeamID       int64     `json:"team_id"`
	TournamentID int64     `json:"tournament_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type Fixture struct {
	ID           int64      `json:"id"`
	TournamentID int64      `json:"tournament_id"`
	Time         time.Time  `json:"time"`
	Team1ID      int64      `json:"team_1_id"`
	Team2ID      int64      `json:"team_2_id"`
	Score1       int        `json:"score_team_1"`
	Score2       int        `json:"score_team_2"`
	Image1       string     `json:"image_team_1,omitempty"`
	Image2       string     `json:"image_team_2,omitempty"`
	EvidenceKey1 string     `json:"-"`
	EvidenceKey2 string     `json:"-"`
	Votes1       int        `json:"votes_team_1"`
	Votes2       int        `json:"votes_team_2"`
	Finalized    bool       `json:"result_finalized"`
	FinalizedAt  *time.Time `json:"finalized_at,omitempty"`
}

// VoteTally is the number of distinct users who voted on the fixture.
func (f Fixture) VoteTally() int {
	return f.Votes1 + f.Votes2
}

// WindowClosed reports whether the result window has elapsed at t.
func (f Fixture) WindowClosed(at time.Time) bool {
	return at.Sub(f.Time) > ResultWindow
}

// TeamFor returns the team playing on side s.
func (f Fixture) TeamFor(s Side) int64 {
	if s == SideTeam2 {
		return f.Team2ID
	}
	return f.Team1ID
}

type Vote struct {
	FixtureID int64     `json:"fixture_id"`
	UserID    int64     `json:"user_id"`
	Side      Side      `json:"side"`
	CreatedAt time.Time `json:"created_at"`
}

// Standing is a team's cumulative record inside one tournament.
type Standing struct {
	ID           int64     `json:"id"`
	TeamID       int64     `json:"team_id"`
	TournamentID int64     `json:"tournament_id"`
	Score        int       `json:"score"`
	Wins         int       `json:"win"`
	Losses       int       `json:"lost"`
	Draws        int       `json:"draw"`
	GamesPlayed  int       `json:"total_game"`
	RegisteredAt time.Time `json:"registered_time"`
}

type AuditEntry struct {
	ID        int64     `json:"id"`
	ActorID   *int64    `json:"actor_id,omitempty"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

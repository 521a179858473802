package portal

// Actor is the authenticated identity a request runs as.
type Actor struct {
	UserID int64
	Staff  bool
}

// Capability answers authorization questions for one resource type. The
// request layer composes these; the state machines run their own
// precondition checks regardless.
type Capability[R any] interface {
	CanRead(actor Actor, resource R) bool
	CanWrite(actor Actor, resource R) bool
}

// UserAccess: profiles are public, only the owner edits them.
type UserAccess struct{}

func (UserAccess) CanRead(Actor, User) bool { return true }

func (UserAccess) CanWrite(a Actor, u User) bool { return a.UserID == u.ID }

// TeamAccess: teams are public, the creator (or staff) manages them.
type TeamAccess struct{}

func (TeamAccess) CanRead(Actor, Team) bool { return true }

func (TeamAccess) CanWrite(a Actor, t Team) bool { return a.Staff || a.UserID == t.CreatorID }

// InvitationAccess: visible to both parties, answerable only by the receiver.
type InvitationAccess struct{}

func (InvitationAccess) CanRead(a Actor, inv Invitation) bool {
	return a.Staff || a.UserID == inv.SenderID || a.UserID == inv.ReceiverID
}

func (InvitationAccess) CanWrite(a Actor, inv Invitation) bool {
	return a.UserID == inv.ReceiverID && inv.Status == InvitationPending
}

// NotificationAccess scopes notifications to their owner unless staff.
type NotificationAccess struct{}

func (NotificationAccess) CanRead(a Actor, n Notification) bool {
	return a.Staff || a.UserID == n.UserID
}

func (NotificationAccess) CanWrite(Actor, Notification) bool { return false }

// TournamentAccess: anyone reads, staff writes.
type TournamentAccess struct{}

func (TournamentAccess) CanRead(Actor, Tournament) bool { return true }

func (TournamentAccess) CanWrite(a Actor, _ Tournament) bool { return a.Staff }

// RegistrationAccess: registrations are write-once, so nobody may change one
// after it exists. Reads go through the tournament's team list.
type RegistrationAccess struct{}

func (RegistrationAccess) CanRead(a Actor, _ Registration) bool { return a.Staff }

func (RegistrationAccess) CanWrite(Actor, Registration) bool { return false }

var (
	_ Capability[User]         = UserAccess{}
	_ Capability[Team]         = TeamAccess{}
	_ Capability[Invitation]   = InvitationAccess{}
	_ Capability[Notification] = NotificationAccess{}
	_ Capability[Tournament]   = TournamentAccess{}
	_ Capability[Registration] = RegistrationAccess{}
)

// Filter keeps the resources c allows actor to read.
func Filter[R any](c Capability[R], actor Actor, items []R) []R {
	out := make([]R, 0, len(items))
	for _, it := range items {
		if c.CanRead(actor, it) {
			out = append(out, it)
		}
	}
	return out
}

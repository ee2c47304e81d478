// Package notify defines the outbound notifications the party coordinator
// sends to participants, and the Notifier interface the transport layer
// implements. Business rejections travel as reason codes inside
// notifications; they are never Go errors.
package notify

import "context"

// Notifier delivers a notification to a single participant. Delivery is
// best-effort: the coordinator never waits on acknowledgement.
type Notifier interface {
	Send(ctx context.Context, to string, n Notification)
}

// Kind identifies a notification type on the wire.
type Kind string

const (
	KindInvited            Kind = "invited"
	KindInvitationFailed   Kind = "invitation_failed"
	KindInviteNotQualified Kind = "invite_not_qualified"
	KindMemberInvited      Kind = "member_invited"
	KindInviteCanceled     Kind = "invite_canceled"
	KindAlreadyInGroup     Kind = "already_in_group"
	KindSomethingMissing   Kind = "something_missing"
	KindGroupFull          Kind = "group_full"
	KindAcceptanceFailed   Kind = "acceptance_failed"
	KindInviteAccepted     Kind = "invite_accepted"
	KindInviteDeclined     Kind = "invite_declined"
	KindRosterUpdated      Kind = "roster_updated"
	KindGroupDissolved     Kind = "group_dissolved"
	KindKicked             Kind = "kicked"
	KindBoardRejected      Kind = "board_rejected"
	KindGoFirstAccepted    Kind = "go_first_accepted"
	KindGoSecondAccepted   Kind = "go_second_accepted"
	KindGoRejected         Kind = "go_rejected"
	KindDestinationChanged Kind = "destination_changed"
)

// Notification is the union of all outbound payloads.
type Notification interface {
	Kind() Kind
}

// Reason is a machine-readable business-rule rejection code.
type Reason string

const (
	ReasonDifferentGroup Reason = "PARTY_DIFFERENT_GROUP"
	ReasonPendingInvite  Reason = "PARTY_PENDING_INVITE"
	ReasonInElevator     Reason = "PARTY_IN_ELEVATOR"
	ReasonGroupFull      Reason = "PARTY_GROUP_FULL"
	ReasonInviterKicked  Reason = "PARTY_INVITER_KICKED"
	ReasonInviterPending Reason = "PARTY_INVITER_PENDING"
)

// BoardCode is the boarding-gate verdict attached to boarding and
// go-handshake rejections.
type BoardCode string

const (
	BoardOkay    BoardCode = "OKAY"
	BoardMissing BoardCode = "MISSING"
	BoardSpace   BoardCode = "SPACE"
	// BoardDispatchPending rejects a repeated go confirmation while a
	// dispatch job for the group is still outstanding.
	BoardDispatchPending BoardCode = "DISPATCH_PENDING"
)

// Invited tells a participant they received an invitation.
type Invited struct {
	LeaderID  string
	InviterID string
}

func (Invited) Kind() Kind { return KindInvited }

// InvitationFailed tells an invitee that an invitation addressed to them
// could not be issued.
type InvitationFailed struct {
	InviterID string
}

func (InvitationFailed) Kind() Kind { return KindInvitationFailed }

// InviteNotQualified tells the inviter why their invitation was rejected.
type InviteNotQualified struct {
	InviteeID string
	Reason    Reason
}

func (InviteNotQualified) Kind() Kind { return KindInviteNotQualified }

// MemberInvited tells existing members that a new invitation went out.
type MemberInvited struct {
	InviteeID string
	InviterID string
}

func (MemberInvited) Kind() Kind { return KindMemberInvited }

// InviteCanceled tells an invitee their invitation no longer stands.
type InviteCanceled struct{}

func (InviteCanceled) Kind() Kind { return KindInviteCanceled }

// AlreadyInGroup rejects an accept from a participant who is already a
// confirmed member somewhere.
type AlreadyInGroup struct{}

func (AlreadyInGroup) Kind() Kind { return KindAlreadyInGroup }

// SomethingMissing rejects a stale or duplicate accept with no recorded
// invitation behind it.
type SomethingMissing struct{}

func (SomethingMissing) Kind() Kind { return KindSomethingMissing }

// GroupFull tells an accepting invitee the group filled up first.
type GroupFull struct{}

func (GroupFull) Kind() Kind { return KindGroupFull }

// AcceptanceFailed tells the inviter an accepted invitation could not be
// honored.
type AcceptanceFailed struct {
	InviteeID string
	Reason    Reason
}

func (AcceptanceFailed) Kind() Kind { return KindAcceptanceFailed }

// InviteAccepted tells the inviter their invitee joined.
type InviteAccepted struct {
	InviteeID string
}

func (InviteAccepted) Kind() Kind { return KindInviteAccepted }

// InviteDeclined tells the inviter their invitee declined.
type InviteDeclined struct {
	InviteeID string
}

func (InviteDeclined) Kind() Kind { return KindInviteDeclined }

// RosterUpdated broadcasts the full group roster after a membership change.
type RosterUpdated struct {
	LeaderID string
	Members  []string
	Pending  []string
	Kicked   []string
}

func (RosterUpdated) Kind() Kind { return KindRosterUpdated }

// GroupDissolved broadcasts that a group no longer exists. TriggerID is
// listed first in FormerMembers so recipients can identify who caused it.
type GroupDissolved struct {
	TriggerID     string
	LeaderID      string
	FormerMembers []string
	WasKick       bool
}

func (GroupDissolved) Kind() Kind { return KindGroupDissolved }

// Kicked tells a participant their leader removed them.
type Kicked struct {
	LeaderID string
}

func (Kicked) Kind() Kind { return KindKicked }

// BoardRejected tells the leader a direct boarding attempt failed.
type BoardRejected struct {
	GatewayID   string
	Code        BoardCode
	FailingIDs  []string
	InCombatIDs []string
}

func (BoardRejected) Kind() Kind { return KindBoardRejected }

// GoFirstAccepted acknowledges the first phase of the go handshake to the
// leader alone.
type GoFirstAccepted struct {
	GatewayID string
}

func (GoFirstAccepted) Kind() Kind { return KindGoFirstAccepted }

// GoSecondAccepted tells each member the go handshake committed and their
// pre-show should start.
type GoSecondAccepted struct {
	GatewayID string
}

func (GoSecondAccepted) Kind() Kind { return KindGoSecondAccepted }

// GoRejected tells the leader a go-handshake phase failed.
type GoRejected struct {
	GatewayID   string
	Code        BoardCode
	FailingIDs  []string
	InCombatIDs []string
}

func (GoRejected) Kind() Kind { return KindGoRejected }

// DestinationChanged tells non-leader members the leader picked another
// destination offset.
type DestinationChanged struct {
	Offset int
}

func (DestinationChanged) Kind() Kind { return KindDestinationChanged }

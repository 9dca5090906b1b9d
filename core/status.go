package core

// DerivedStatus is the ticket-derived completion status of a requirement
// (spec.md §4.7). It is distinct from BlockingStatus.
type DerivedStatus string

const (
	StatusNoTicket   DerivedStatus = "no-ticket"
	StatusPending    DerivedStatus = "pending"
	StatusInProgress DerivedStatus = "in-progress"
	StatusComplete   DerivedStatus = "complete"
	StatusObsolete   DerivedStatus = "obsolete"
)

// Complete reports whether a status counts as "done" for the purposes of
// blocking analysis (§4.8): a blocker is anything that is not complete or
// obsolete.
func (s DerivedStatus) Complete() bool {
	return s == StatusComplete || s == StatusObsolete
}

// BlockingStatus is the dependency-graph-derived status of a requirement
// or container (spec.md §4.8).
type BlockingStatus string

const (
	BlockingNotBlocked BlockingStatus = "not-blocked"
	BlockingBlocked    BlockingStatus = "blocked"
	BlockingInCycle    BlockingStatus = "in-cycle"
)

// TicketStatus is the status field recorded on a ticket itself. "blocked"
// is intentionally absent: it is never a ticket status, only a derived
// one (spec.md §4.6).
type TicketStatus string

const (
	TicketPending    TicketStatus = "pending"
	TicketInProgress TicketStatus = "in-progress"
	TicketComplete   TicketStatus = "complete"
	TicketObsolete   TicketStatus = "obsolete"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketPending, TicketInProgress, TicketComplete, TicketObsolete:
		return true
	}
	return false
}

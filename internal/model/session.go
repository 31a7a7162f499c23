package model

import "time"

type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "OPEN"
	SessionStatusClosed SessionStatus = "CLOSED"
)

func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusClosed
}

func (s SessionStatus) String() string {
	return string(s)
}

// Session is the stored state of a checkout session: the latest snapshot plus
// the lifecycle status and a monotonically increasing version.
type Session struct {
	ID        string        `json:"id"`
	Status    SessionStatus `json:"status"`
	Version   int64         `json:"version"`
	Checkout  Checkout      `json:"checkout"`
	Order     *Order        `json:"order,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Checkout = s.Checkout.Clone()
	out.Order = s.Order.Clone()
	return &out
}

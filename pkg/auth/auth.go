package auth

import "context"

type Kind string

const (
	KindOffline Kind = "offline"
	KindElyby   Kind = "elyby"
)

// Session is the identity a single launch runs with.
type Session struct {
	Kind     Kind
	Username string
	UUID     string
	Token    string
}

// UserType is the value substituted for ${user_type}.
func (s Session) UserType() string {
	return string(s.Kind)
}

type Auth interface {
	Authenticate(ctx context.Context) (Session, error)
}

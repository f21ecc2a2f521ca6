package auth

import (
	"context"

	"github.com/google/uuid"
)

// OfflineToken marks a session that carries no real credential.
const OfflineToken = "cat_offline"

type OfflineAuth struct {
	Seed string
}

func NewOfflineAuth(seed string) Auth {
	return &OfflineAuth{
		Seed: seed,
	}
}

func (a *OfflineAuth) Authenticate(context.Context) (Session, error) {
	return NewOfflineSession(a.Seed), nil
}

// NewOfflineSession derives a stable identity from seed: the same seed always
// yields the same uuid (name-based, DNS namespace).
func NewOfflineSession(seed string) Session {
	return Session{
		Kind:     KindOffline,
		Username: seed,
		UUID:     genUUID(seed),
		Token:    OfflineToken,
	}
}

func genUUID(seed string) string {
	return uuid.NewMD5(uuid.NameSpaceDNS, []byte(seed)).String()
}

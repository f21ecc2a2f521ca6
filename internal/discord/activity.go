package discord

import (
	"time"

	"github.com/hugolgst/rich-go/client"
)

const (
	DiscordAppID = "1393701411233202387"
)

// Presence shows launcher state as Discord rich presence. The zero value is
// logged out and every call is a no-op until Login succeeds.
type Presence struct {
	loggedIn bool
	started  time.Time
}

func (p *Presence) Login() error {
	if err := client.Login(DiscordAppID); err != nil {
		return err
	}

	p.loggedIn = true
	p.started = time.Now()
	return nil
}

func (p *Presence) Logout() {
	if !p.loggedIn {
		return
	}

	client.Logout()
	p.loggedIn = false
}

func (p *Presence) SetIdle() error {
	return p.setActivity("In the menu", "")
}

func (p *Presence) SetPlaying(versionID string) error {
	return p.setActivity("In game", "Minecraft "+versionID)
}

func (p *Presence) setActivity(state, details string) error {
	if !p.loggedIn {
		return nil
	}

	now := time.Now()
	return client.SetActivity(client.Activity{
		State:   state,
		Details: details,
		Timestamps: &client.Timestamps{
			Start: &now,
		},
	})
}

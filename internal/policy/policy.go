// Package policy decides whether a request may proceed. Every function here is
// a pure decision over the identity and target passed in; callers supply fresh
// profile existence and superuser status on every request.
package policy

import (
	"net/url"

	"forum/internal/observability"
)

// Well-known redirect targets.
const (
	LoginPath         = "/accounts/login"
	CreateProfilePath = "/accounts/profile/create_profile/"
	ProfilePath       = "/accounts/profile/"
	HomePath          = "/"
)

// PermissionMessage is the reason carried by every ownership denial.
const PermissionMessage = "You do not have permission to access this object"

// Identity is the caller as resolved from the request. The zero value is anonymous.
type Identity struct {
	UserID    uint
	Superuser bool
}

// Anonymous returns the identity of an unauthenticated caller.
func Anonymous() Identity { return Identity{} }

// Authenticated reports whether the identity belongs to a logged-in user.
func (i Identity) Authenticated() bool { return i.UserID != 0 }

// ProfileState is where an identity stands in the one-time profile flow.
type ProfileState int

const (
	StateAnonymous ProfileState = iota
	StateNoProfile
	StateWithProfile
)

func (s ProfileState) String() string {
	switch s {
	case StateNoProfile:
		return "authenticated-no-profile"
	case StateWithProfile:
		return "authenticated-with-profile"
	default:
		return "anonymous"
	}
}

// StateOf derives the profile state; hasProfile is ignored for anonymous callers.
func StateOf(identity Identity, hasProfile bool) ProfileState {
	switch {
	case !identity.Authenticated():
		return StateAnonymous
	case hasProfile:
		return StateWithProfile
	default:
		return StateNoProfile
	}
}

// Outcome is the verdict of a policy.
type Outcome int

const (
	Allow Outcome = iota
	Redirect
	Deny
)

func (o Outcome) String() string {
	switch o {
	case Redirect:
		return "redirect"
	case Deny:
		return "deny"
	default:
		return "allow"
	}
}

// Decision is a policy verdict. Location is set for Redirect, Reason for Deny.
type Decision struct {
	Outcome  Outcome
	Location string
	Reason   string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

func allow() Decision                { return Decision{Outcome: Allow} }
func redirectTo(loc string) Decision { return Decision{Outcome: Redirect, Location: loc} }
func deny(reason string) Decision    { return Decision{Outcome: Deny, Reason: reason} }

// ProfileGate applies the profile-completeness rule to a request for targetPath.
// Anonymous callers go to login first; the profile check never runs for them.
func ProfileGate(state ProfileState, targetPath string) Decision {
	var d Decision
	isCreate := targetPath == CreateProfilePath

	switch state {
	case StateAnonymous:
		d = redirectTo(LoginPath + "?next=" + url.QueryEscape(targetPath))
	case StateNoProfile:
		if isCreate {
			d = allow()
		} else {
			d = redirectTo(CreateProfilePath)
		}
	default:
		if isCreate {
			d = redirectTo(HomePath)
		} else {
			d = allow()
		}
	}

	observability.PolicyDecisions.WithLabelValues("profile_gate", d.Outcome.String()).Inc()
	return d
}

// Ownership allows the record's author or a superuser and denies everyone else.
func Ownership(identity Identity, authorID uint) Decision {
	d := deny(PermissionMessage)
	if identity.Superuser || (identity.Authenticated() && identity.UserID == authorID) {
		d = allow()
	}
	observability.PolicyDecisions.WithLabelValues("ownership", d.Outcome.String()).Inc()
	return d
}

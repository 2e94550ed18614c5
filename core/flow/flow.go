// Package flow encodes multi-step inline-keyboard selections as a pure
// transition function over opaque callback tokens. The token is the only
// channel carrying flow state between two inbound callbacks, so its shape is
// validated before it is trusted as state input.
package flow

import "strings"

// Phase is the discrete stage of a selection flow.
type Phase string

const (
	// PhaseNone means no selection is in progress.
	PhaseNone Phase = "none"
	// PhaseAwaitingTarget means the base value is chosen and the second
	// choice is pending.
	PhaseAwaitingTarget Phase = "awaiting_target"
)

// Token phase tags. A first-step token is "first_<CODE>", a second-step token
// embeds the base chosen earlier: "second_<BASE>_<CODE>".
const (
	TagFirst  = "first"
	TagSecond = "second"
	sep       = "_"
)

// Selection is the per-user flow state between callbacks.
type Selection struct {
	Phase Phase
	Base  string
}

// ActionKind tells the caller what to do after a transition.
type ActionKind int

const (
	// ActionNone means the token was unusable; no reply is required.
	ActionNone ActionKind = iota
	// ActionPromptSecond asks the user for the second value, embedding
	// Action.Base into the next round's tokens.
	ActionPromptSecond
	// ActionResolve completes the round: resolve Base against Target.
	ActionResolve
	// ActionExpired reports an out-of-sequence token; the flow was reset
	// and the user should restart.
	ActionExpired
)

// Action is the outcome of a transition.
type Action struct {
	Kind   ActionKind
	Base   string
	Target string
}

// FirstToken builds a first-step token for the given value.
func FirstToken(code string) string {
	return TagFirst + sep + code
}

// SecondToken builds a second-step token embedding the base chosen earlier.
func SecondToken(base, code string) string {
	return TagSecond + sep + base + sep + code
}

// IsToken reports whether payload has the shape of a selection token. Callers
// use it to separate flow callbacks from unrelated callback payloads before
// running a transition.
func IsToken(payload string) bool {
	return strings.HasPrefix(payload, TagFirst+sep) ||
		strings.HasPrefix(payload, TagSecond+sep)
}

// Transition applies one callback token to the current selection. It is pure:
// the input state is never mutated and the same inputs always produce the same
// outputs. Malformed or stale tokens degrade to a reset, never a panic.
func Transition(sel Selection, token string) (Selection, Action) {
	tag, rest, ok := strings.Cut(token, sep)
	if !ok {
		return Selection{Phase: PhaseNone}, Action{Kind: ActionExpired}
	}

	switch tag {
	case TagFirst:
		if !validCode(rest) {
			return Selection{Phase: PhaseNone}, Action{Kind: ActionExpired}
		}
		// A first-step token always (re)starts the flow, including while a
		// previous selection is pending: re-tapping the first keyboard is a
		// restart, not an error.
		return Selection{Phase: PhaseAwaitingTarget, Base: rest},
			Action{Kind: ActionPromptSecond, Base: rest}

	case TagSecond:
		base, target, ok := strings.Cut(rest, sep)
		if !ok || !validCode(base) || !validCode(target) {
			return Selection{Phase: PhaseNone}, Action{Kind: ActionExpired}
		}
		if sel.Phase != PhaseAwaitingTarget || sel.Base != base {
			// Stale second-step token: the embedded base no longer matches
			// the live selection (or there is none).
			return Selection{Phase: PhaseNone}, Action{Kind: ActionExpired}
		}
		return Selection{Phase: PhaseNone},
			Action{Kind: ActionResolve, Base: base, Target: target}
	}

	return Selection{Phase: PhaseNone}, Action{Kind: ActionExpired}
}

// validCode accepts short uppercase identifiers such as ISO currency codes.
func validCode(s string) bool {
	if len(s) < 2 || len(s) > 8 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

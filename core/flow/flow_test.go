package flow

import "testing"

func TestTransitionHappyPath(t *testing.T) {
	sel, act := Transition(Selection{Phase: PhaseNone}, "first_USD")
	if sel.Phase != PhaseAwaitingTarget || sel.Base != "USD" {
		t.Fatalf("unexpected state after first step: %+v", sel)
	}
	if act.Kind != ActionPromptSecond || act.Base != "USD" {
		t.Fatalf("unexpected action after first step: %+v", act)
	}

	sel, act = Transition(sel, "second_USD_EUR")
	if sel.Phase != PhaseNone {
		t.Fatalf("expected reset after resolution, got %+v", sel)
	}
	if act.Kind != ActionResolve || act.Base != "USD" || act.Target != "EUR" {
		t.Fatalf("unexpected resolve action: %+v", act)
	}
}

func TestTransitionOutOfSequence(t *testing.T) {
	tests := []struct {
		name  string
		state Selection
		token string
	}{
		{"second while idle", Selection{Phase: PhaseNone}, "second_USD_EUR"},
		{"base mismatch", Selection{Phase: PhaseAwaitingTarget, Base: "GBP"}, "second_USD_EUR"},
		{"unknown tag", Selection{Phase: PhaseNone}, "third_USD"},
		{"no separator", Selection{Phase: PhaseNone}, "garbage"},
		{"empty token", Selection{Phase: PhaseAwaitingTarget, Base: "USD"}, ""},
		{"lowercase code", Selection{Phase: PhaseNone}, "first_usd"},
		{"missing target", Selection{Phase: PhaseAwaitingTarget, Base: "USD"}, "second_USD"},
		{"overlong code", Selection{Phase: PhaseNone}, "first_ABCDEFGHIJK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, act := Transition(tt.state, tt.token)
			if sel.Phase != PhaseNone || sel.Base != "" {
				t.Fatalf("expected reset state, got %+v", sel)
			}
			if act.Kind != ActionExpired {
				t.Fatalf("expected expired action, got %+v", act)
			}
		})
	}
}

func TestTransitionFirstRestartsPendingFlow(t *testing.T) {
	pending := Selection{Phase: PhaseAwaitingTarget, Base: "EUR"}
	sel, act := Transition(pending, "first_JPY")
	if sel.Phase != PhaseAwaitingTarget || sel.Base != "JPY" {
		t.Fatalf("expected restart with new base, got %+v", sel)
	}
	if act.Kind != ActionPromptSecond || act.Base != "JPY" {
		t.Fatalf("expected prompt for second value, got %+v", act)
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	in := Selection{Phase: PhaseAwaitingTarget, Base: "USD"}
	_, _ = Transition(in, "second_USD_RUB")
	if in.Phase != PhaseAwaitingTarget || in.Base != "USD" {
		t.Fatalf("input selection mutated: %+v", in)
	}
}

func TestTokenBuilders(t *testing.T) {
	if got := FirstToken("USD"); got != "first_USD" {
		t.Fatalf("FirstToken = %q", got)
	}
	if got := SecondToken("USD", "RUB"); got != "second_USD_RUB" {
		t.Fatalf("SecondToken = %q", got)
	}
}

func TestIsToken(t *testing.T) {
	tests := []struct {
		payload string
		want    bool
	}{
		{"first_USD", true},
		{"second_USD_RUB", true},
		{"more_info", false},
		{"firstUSD", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsToken(tc.payload); got != tc.want {
			t.Errorf("IsToken(%q) = %v, want %v", tc.payload, got, tc.want)
		}
	}
}

package app

import (
	"testing"

	"github.com/m3rciful/gptbot/core/dialog"
)

func TestBuildRegistryWiring(t *testing.T) {
	a := &App{}
	reg := a.buildRegistry()

	for _, cmd := range []string{"/start", "/info", "/random_pic", "/currency"} {
		if _, _, ok := reg.LookupCommand(cmd); !ok {
			t.Errorf("command %s not registered", cmd)
		}
	}

	if _, ok := reg.GetCallback(cbMoreInfo); !ok {
		t.Error("more_info callback not registered")
	}
	if reg.TextFallback() == nil {
		t.Error("text fallback not set")
	}
	if reg.VoiceHandler() == nil {
		t.Error("voice handler not set")
	}
	if reg.CallbackNotFound() == nil {
		t.Error("callback fallback not set")
	}
}

func TestInlineMarkupRows(t *testing.T) {
	btns := []dialog.Button{
		{Text: "USD", Data: "first_USD"},
		{Text: "EUR", Data: "first_EUR"},
		{Text: "RUB", Data: "first_RUB"},
		{Text: "GBP", Data: "first_GBP"},
		{Text: "JPY", Data: "first_JPY"},
		{Text: "AUD", Data: "first_AUD"},
	}

	markup := inlineMarkup(btns)
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.InlineKeyboard))
	}
	if markup.InlineKeyboard[0][2].Data != "first_RUB" {
		t.Fatalf("unexpected grid: %+v", markup.InlineKeyboard)
	}
}

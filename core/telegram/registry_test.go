package telegram

import (
	"testing"

	"github.com/m3rciful/gptbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noopHandler(tele.Context) error { return nil }

func registerTestCommand(reg *Registry, name, desc string) {
	reg.RegisterCommand(name, commands.Command{Handler: noopHandler, Description: desc})
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()

	if err := reg.RegisterCallback("more_info", noopHandler); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := reg.GetCallback("more_info"); !ok {
		t.Fatal("registered callback not found")
	}
	if _, ok := reg.GetCallback("missing"); ok {
		t.Fatal("unexpected hit for unregistered key")
	}

	if err := reg.RegisterCallback("more_info", noopHandler); err == nil {
		t.Fatal("duplicate registration accepted")
	}
	if err := reg.RegisterCallback("", noopHandler); err == nil {
		t.Fatal("empty key accepted")
	}
	if err := reg.RegisterCallback("x", nil); err == nil {
		t.Fatal("nil handler accepted")
	}

	keys := reg.ListCallbacks()
	if len(keys) != 1 || keys[0] != "more_info" {
		t.Fatalf("callback keys = %v", keys)
	}
}

func TestRegistryCallbackNotFoundDefault(t *testing.T) {
	reg := NewRegistry()
	if reg.CallbackNotFound() == nil {
		t.Fatal("default fallback missing")
	}

	reg.SetCallbackNotFound(noopHandler)
	if reg.CallbackNotFound() == nil {
		t.Fatal("fallback lost after replacement")
	}
	reg.SetCallbackNotFound(nil)
	if reg.CallbackNotFound() == nil {
		t.Fatal("nil replacement must keep the previous fallback")
	}
}

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	registerTestCommand(reg, "/start", "Start the bot")
	registerTestCommand(reg, "/info", "List available commands")
	registerTestCommand(reg, "no_slash", "rejected")
	registerTestCommand(reg, "/start", "duplicate")

	if len(reg.Commands()) != 2 {
		t.Fatalf("commands = %v", reg.Commands())
	}
	if _, _, ok := reg.LookupCommand("info"); !ok {
		t.Fatal("lookup without slash prefix failed")
	}
	list := reg.ListCommands(true)
	if len(list) != 2 || list[0].Text != "/info" {
		t.Fatalf("command list = %+v", list)
	}
}

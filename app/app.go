// Package app assembles the bot: it builds the providers from configuration,
// wires them into the dialog orchestrator, and exposes the Telegram run
// options consumed by main.
package app

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/m3rciful/gptbot/core/chat"
	coreconfig "github.com/m3rciful/gptbot/core/config"
	"github.com/m3rciful/gptbot/core/dialog"
	"github.com/m3rciful/gptbot/core/logger"
	"github.com/m3rciful/gptbot/core/provider"
	tg "github.com/m3rciful/gptbot/core/telegram"
	"github.com/m3rciful/gptbot/core/telegram/router"
)

// App holds the assembled bot components.
type App struct {
	cfg *coreconfig.Config
	orc *dialog.Orchestrator
	reg *tg.Registry
}

// New builds the providers and orchestrator from the normalized config.
func New(cfg *coreconfig.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}

	openaiTimeout := time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second

	completer := provider.NewCompletion(provider.CompletionConfig{
		APIKey:       cfg.OpenAI.APIKey,
		BaseURL:      cfg.OpenAI.BaseURL,
		Model:        cfg.OpenAI.ChatModel,
		SystemPrompt: cfg.OpenAI.SystemPrompt,
		MaxTokens:    cfg.OpenAI.MaxTokens,
		Timeout:      openaiTimeout,
	})
	transcriber := provider.NewTranscription(provider.TranscriptionConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.WhisperModel,
		Timeout: openaiTimeout,
	})
	rates := provider.NewRates(provider.RatesConfig{
		BaseURL: cfg.Rates.URL,
		Timeout: time.Duration(cfg.Rates.TimeoutSeconds) * time.Second,
	})
	images := provider.NewImage(provider.ImageConfig{
		URL:     cfg.Image.URL,
		Timeout: time.Duration(cfg.Image.TimeoutSeconds) * time.Second,
	})

	orc := dialog.New(dialog.Config{
		History:     chat.NewHistory(cfg.Chat.MaxTurns),
		Completer:   completer,
		Transcriber: transcriber,
		Rates:       rates,
		Images:      images,
	})

	a := &App{cfg: cfg, orc: orc}
	a.reg = a.buildRegistry()
	return a, nil
}

// TelegramRunOptions exposes the bot wiring for the Telegram runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := router.CommandRoutes(a.reg)
	routes = append(routes, router.MessageRoutes(a.reg)...)
	routes = append(routes, router.CallbackRoute(a.reg, router.CallbackOptions{}))

	opts := tg.RunOptions{
		Config:      a.cfg,
		Registry:    a.reg,
		Middlewares: tg.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			if rt.Bot != nil && rt.Bot.Me != nil {
				logger.Info(ctx, "app", "bot.identity",
					slog.String("username", rt.Bot.Me.Username),
				)
			}
			return nil
		},
	}
	return opts, nil
}

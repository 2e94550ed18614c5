package router

import (
	"time"

	tg "github.com/m3rciful/gptbot/core/telegram"
	"github.com/m3rciful/gptbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MessageRoutes builds handlers for text and voice updates.
// Text updates are first matched against registered commands so that
// commands typed without the leading slash still resolve; everything
// else falls through to the registry text fallback.
func MessageRoutes(reg *tg.Registry) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "text", start, "", func() error {
					return fb(c)
				})
			}
		}

		logHandlerSummary(c, "text", start, "skip", nil)
		return nil
	}

	voiceHandler := func(c tele.Context) error {
		start := time.Now()
		if reg != nil {
			if vh := reg.VoiceHandler(); vh != nil {
				return handleWithSummary(c, "voice", start, "", func() error {
					return vh(c)
				})
			}
		}
		logHandlerSummary(c, "voice", start, "skip", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(textHandler)),
		},
		{
			Endpoint: tele.OnVoice,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(voiceHandler)),
		},
	}
}

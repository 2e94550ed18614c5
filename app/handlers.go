package app

import (
	"io"
	"strings"

	"log/slog"

	"github.com/m3rciful/gptbot/core/dialog"
	"github.com/m3rciful/gptbot/core/flow"
	"github.com/m3rciful/gptbot/core/logger"
	tg "github.com/m3rciful/gptbot/core/telegram"
	"github.com/m3rciful/gptbot/core/telegram/commands"
	"github.com/m3rciful/gptbot/core/telegram/format"
	tghelpers "github.com/m3rciful/gptbot/core/telegram/helpers"
	"github.com/m3rciful/gptbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

const (
	msgFetching     = "Fetching data..."
	msgGreeting     = "*Data received!*\n_Hello!_"
	msgThinking     = "⏳ Thinking..."
	msgTranscribing = "🎙 Recognizing the voice message..."
	msgVoiceMissing = "❌ Could not download the voice message."
	msgMoreInfo     = "Here is some additional information!"
	msgUnsupported  = "Unsupported action"

	msgInfo = `<b>Available commands:</b>

<i>/start</i> - start the bot
<i>/info</i> - list available commands
<i>/random_pic</i> - get a random 800x600 picture
<i>/currency</i> - get an exchange rate`

	// Telegram bots cannot download files larger than 20 MB.
	maxVoiceBytes = 20 << 20

	cbMoreInfo = "more_info"
	websiteURL = "https://example.com"

	// Currency buttons per inline keyboard row.
	currencyPerRow = 3
)

func (a *App) buildRegistry() *tg.Registry {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.onStart,
		Description: "Start the bot",
	})
	reg.RegisterCommand("/info", commands.Command{
		Handler:     a.onInfo,
		Description: "List available commands",
	})
	reg.RegisterCommand("/random_pic", commands.Command{
		Handler:     a.onRandomPic,
		Description: "Get a random 800x600 picture",
	})
	reg.RegisterCommand("/currency", commands.Command{
		Handler:     a.onCurrency,
		Description: "Get an exchange rate",
	})

	_ = reg.RegisterCallback(cbMoreInfo, a.onMoreInfo)

	reg.SetTextFallback(a.onText)
	reg.SetVoiceHandler(a.onVoice)
	reg.SetCallbackNotFound(a.onSelection)

	return reg
}

func (a *App) onStart(c tele.Context) error {
	kb := keyboard.ReplyButtons([]string{"/random_pic", "/currency"})
	if err := tghelpers.SendText(c, msgFetching, &tele.SendOptions{ReplyMarkup: kb}); err != nil {
		return err
	}
	inline := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "Visit the website", URL: websiteURL}},
		[]keyboard.InlineBtn{{Text: "More info", Data: cbMoreInfo}},
	)
	return tghelpers.SendMD(c, msgGreeting, inline)
}

func (a *App) onMoreInfo(c tele.Context) error {
	return tghelpers.SendText(c, msgMoreInfo)
}

func (a *App) onInfo(c tele.Context) error {
	return tghelpers.SendHTML(c, msgInfo)
}

func (a *App) onRandomPic(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	resp := a.orc.HandleImage(ctx, senderID(c))
	return a.render(c, resp)
}

func (a *App) onCurrency(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	resp := a.orc.HandleSelectionStart(ctx, senderID(c))
	return a.render(c, resp)
}

func (a *App) onText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if err := tghelpers.SendText(c, msgThinking); err != nil {
		return err
	}
	resp := a.orc.HandleText(ctx, senderID(c), c.Text())
	return a.render(c, resp)
}

func (a *App) onVoice(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	msg := c.Message()
	if msg == nil || msg.Voice == nil {
		return nil
	}
	if err := tghelpers.SendText(c, msgTranscribing); err != nil {
		return err
	}

	audio, err := a.downloadVoice(c, msg.Voice)
	if err != nil {
		logger.Warn(ctx, "app", "voice.download.fail",
			slog.Int64("user_id", senderID(c)),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgVoiceMissing)
	}

	resp := a.orc.HandleVoice(ctx, senderID(c), audio)
	return a.render(c, resp)
}

func (a *App) downloadVoice(c tele.Context, voice *tele.Voice) ([]byte, error) {
	rc, err := c.Bot().File(&voice.File)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxVoiceBytes))
}

// onSelection handles callbacks that are not registered by key. Currency flow
// buttons carry their selection token verbatim in the callback data; anything
// else is answered with an "unsupported" toast.
func (a *App) onSelection(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	token := strings.TrimSpace(strings.TrimPrefix(cb.Data, "\f"))
	if !flow.IsToken(token) {
		_ = c.Respond(&tele.CallbackResponse{Text: msgUnsupported})
		return nil
	}
	_ = c.Respond()

	ctx := tghelpers.BuildContext(c)
	resp := a.orc.HandleSelectionCallback(ctx, senderID(c), token)
	return a.render(c, resp)
}

// render delivers a single orchestrator response through the send helpers.
func (a *App) render(c tele.Context, resp dialog.Response) error {
	if resp.Transcript != "" {
		echo := "✍️ Recognized text: " + format.EscapeMarkdown(resp.Transcript)
		if err := tghelpers.SendMDOrPlain(c, echo); err != nil {
			return err
		}
	}

	if resp.Photo != "" {
		return tghelpers.SendPhotoURL(c, resp.Photo, resp.Caption)
	}
	if resp.Text == "" {
		return nil
	}

	var rm *tele.ReplyMarkup
	if len(resp.Buttons) > 0 {
		rm = inlineMarkup(resp.Buttons)
	}

	switch resp.Mode {
	case dialog.ModeMarkdown:
		if rm != nil {
			return tghelpers.SendMDOrPlain(c, resp.Text, rm)
		}
		return tghelpers.SendMDOrPlain(c, resp.Text)
	case dialog.ModeHTML:
		if rm != nil {
			return tghelpers.SendHTML(c, resp.Text, rm)
		}
		return tghelpers.SendHTML(c, resp.Text)
	default:
		if rm != nil {
			return tghelpers.SendText(c, resp.Text, &tele.SendOptions{ReplyMarkup: rm})
		}
		return tghelpers.SendText(c, resp.Text)
	}
}

func inlineMarkup(btns []dialog.Button) *tele.ReplyMarkup {
	converted := make([]keyboard.InlineBtn, 0, len(btns))
	for _, b := range btns {
		converted = append(converted, keyboard.InlineBtn{Text: b.Text, Data: b.Data})
	}
	return keyboard.InlineButtonsNPerRow(converted, currencyPerRow)
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

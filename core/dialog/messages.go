package dialog

import "github.com/m3rciful/gptbot/core/provider"

// User-facing texts. Every provider failure maps to a fixed, distinct message
// so the user can tell network trouble from bad upstream data.
const (
	msgEmptyMessage     = "Please send a text message."
	msgChooseFirst      = "Choose the first currency:"
	msgChooseSecond     = "Now choose the second currency:"
	msgSelectionExpired = "Selection expired, please run /currency again."
	msgRateNotFound     = "❌ Could not get the exchange rate."
	msgImageCaption     = "🎲 Random image!"
)

var failureMessages = map[string]map[provider.Kind]string{
	provider.NameCompletion: {
		provider.KindTimeout:        "⌛ The assistant took too long to answer. Try again later.",
		provider.KindNetwork:        "❌ Network error while contacting the assistant.",
		provider.KindUpstreamStatus: "❌ The assistant service returned an error. Try again later.",
		provider.KindUnknown:        "❌ Unexpected reply from the assistant. Try again later.",
	},
	provider.NameTranscription: {
		provider.KindTimeout:        "⌛ Voice recognition timed out. Try again later.",
		provider.KindNetwork:        "❌ Network error while recognizing the voice message.",
		provider.KindUpstreamStatus: "❌ Voice recognition failed. Try again later.",
		provider.KindUnknown:        "❌ Could not understand the voice message. Try again later.",
	},
	provider.NameRates: {
		provider.KindTimeout:        "⌛ Rate request timed out.",
		provider.KindNetwork:        "❌ Network error while fetching rates.",
		provider.KindUpstreamStatus: "❌ The rate service returned an error.",
		provider.KindUnknown:        "❌ Could not read the rate data.",
	},
	provider.NameImage: {
		provider.KindTimeout:        "⌛ Image request timed out.",
		provider.KindNetwork:        "❌ Network error while loading the image.",
		provider.KindUpstreamStatus: "❌ Could not load the image.",
		provider.KindUnknown:        "❌ Something went wrong while loading the image.",
	},
}

// failureMessage resolves the fixed user text for a classified provider error.
func failureMessage(name string, err error) string {
	if byKind, ok := failureMessages[name]; ok {
		if msg, ok := byKind[provider.KindOf(err)]; ok {
			return msg
		}
		return byKind[provider.KindUnknown]
	}
	return "❌ Something went wrong. Try again later."
}

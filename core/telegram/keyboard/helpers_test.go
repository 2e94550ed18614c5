package keyboard

import "testing"

func TestInlineButtonsRows(t *testing.T) {
	markup := InlineButtonsRows(
		[]InlineBtn{{Text: "Visit the website", URL: "https://example.com"}},
		[]InlineBtn{{Text: "More info", Data: "more_info"}},
	)

	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.InlineKeyboard))
	}
	link := markup.InlineKeyboard[0][0]
	if link.URL != "https://example.com" || link.Data != "" {
		t.Fatalf("unexpected url button: %+v", link)
	}
	cb := markup.InlineKeyboard[1][0]
	if cb.Data != "more_info" || cb.URL != "" {
		t.Fatalf("unexpected callback button: %+v", cb)
	}
}

func TestInlineButtonsNPerRow(t *testing.T) {
	btns := []InlineBtn{
		{Text: "USD", Data: "first_USD"},
		{Text: "EUR", Data: "first_EUR"},
		{Text: "RUB", Data: "first_RUB"},
		{Text: "GBP", Data: "first_GBP"},
		{Text: "JPY", Data: "first_JPY"},
		{Text: "AUD", Data: "first_AUD"},
	}

	markup := InlineButtonsNPerRow(btns, 3)
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.InlineKeyboard))
	}
	for i, row := range markup.InlineKeyboard {
		if len(row) != 3 {
			t.Fatalf("row %d length = %d, want 3", i, len(row))
		}
	}
	if markup.InlineKeyboard[1][2].Data != "first_AUD" {
		t.Fatalf("last button = %+v", markup.InlineKeyboard[1][2])
	}

	markup = InlineButtonsNPerRow(btns[:4], 3)
	if len(markup.InlineKeyboard) != 2 || len(markup.InlineKeyboard[1]) != 1 {
		t.Fatalf("uneven split rows = %+v", markup.InlineKeyboard)
	}
}

package nav

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// teleMessenger adapts tele.Context to the Messenger interface.
type teleMessenger struct {
	c tele.Context
}

// NewMessenger wraps the current update's context for outbound delivery.
func NewMessenger(c tele.Context) Messenger {
	return teleMessenger{c: c}
}

func (m teleMessenger) Respond(text string) error {
	if m.c.Callback() == nil {
		return nil
	}
	if text == "" {
		return m.c.Respond()
	}
	return m.c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
}

func (m teleMessenger) EditText(caption string, rows [][]Button) error {
	err := m.c.Edit(caption, Markup(rows))
	return ignoreNotModified(err)
}

func (m teleMessenger) EditMedia(media, caption string, rows [][]Button) error {
	photo := &tele.Photo{File: MediaFile(media), Caption: caption}
	err := m.c.Edit(photo, Markup(rows))
	return ignoreNotModified(err)
}

func (m teleMessenger) Send(media, caption string, rows [][]Button) error {
	if media != "" {
		photo := &tele.Photo{File: MediaFile(media), Caption: caption}
		return m.c.Send(photo, Markup(rows))
	}
	return m.c.Send(caption, Markup(rows))
}

// Markup converts button rows into a telebot inline keyboard. Tokens are
// written as plain callback data, no handler-unique prefix, because dispatch
// goes through the single OnCallback route.
func Markup(rows [][]Button) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		r := make([]tele.InlineButton, 0, len(row))
		for _, btn := range row {
			r = append(r, tele.InlineButton{Text: btn.Label, Data: btn.Token.Encode()})
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}

// MediaFile interprets a media reference as either a URL or a file id.
func MediaFile(media string) tele.File {
	if strings.HasPrefix(media, "http://") || strings.HasPrefix(media, "https://") {
		return tele.FromURL(media)
	}
	return tele.File{FileID: media}
}

// Telegram answers edits of an unchanged message with a 400; for page
// re-renders that is a no-op, not a failure.
func ignoreNotModified(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

package app

import (
	"log/slog"

	"github.com/smakfood/smakbot/core/logger"
	"github.com/smakfood/smakbot/core/telegram/commands"
	tghelpers "github.com/smakfood/smakbot/core/telegram/helpers"
	"github.com/smakfood/smakbot/core/telegram/keyboard"
	"github.com/smakfood/smakbot/internal/nav"

	tele "gopkg.in/telebot.v4"
)

func (a *App) registerCommands() {
	a.commands.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Start the bot and pick a language",
	})
	a.commands.RegisterCommand("/menu", commands.Command{
		Handler:     a.handleMenu,
		Description: "Open the main menu",
	})
	a.commands.RegisterCommand("/admin", commands.Command{
		Handler:     a.handleAdmin,
		Description: "Catalog administration",
		AdminOnly:   true,
		Hidden:      true,
	})

	a.commands.SetTextFallback(func(c tele.Context) error {
		return tghelpers.SendText(c, a.text(a.language(c), "text.fallback"))
	})
}

// handleStart registers the profile and offers the language choice.
func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sndr := c.Sender()

	if err := a.profiles.Upsert(ctx, sndr.ID, sndr.Username); err != nil {
		logger.Warn(ctx, "app", "profile.upsert.fail",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}

	rows := [][]nav.Button{{
		{Label: "Українська", Token: nav.Token{Content: ContentLanguage, Action: actionSetLanguage, Extra: "uk"}},
		{Label: "English", Token: nav.Token{Content: ContentLanguage, Action: actionSetLanguage, Extra: "en"}},
	}}
	return c.Send(a.text(a.language(c), "start.welcome"), nav.Markup(rows))
}

// handleSetLanguage stores the choice and moves on to contact capture.
func (a *App) handleSetLanguage(c tele.Context, tok nav.Token) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	if err := a.setLanguage(ctx, userID, tok.Extra); err != nil {
		return a.respondGenericError(c, err)
	}
	lang := a.language(c)

	if err := tghelpers.EditOrSendMD(c, a.text(lang, "start.language_saved")); err != nil {
		logger.Debug(ctx, "app", "language.edit.skip", slog.String("err", err.Error()))
	}

	user, ok, err := a.profiles.Get(ctx, userID)
	if err == nil && (!ok || user.Phone == "") {
		if sendErr := c.Send(
			a.text(lang, "start.share_contact"),
			keyboard.ContactButton(a.text(lang, "start.contact_button")),
		); sendErr != nil {
			return sendErr
		}
		return c.Respond()
	}
	if menuErr := a.sendMenu(c, lang); menuErr != nil {
		return menuErr
	}
	return c.Respond()
}

// handleContact persists the shared phone number.
func (a *App) handleContact(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	contact := c.Message().Contact
	if contact == nil {
		return nil
	}
	sndr := c.Sender()
	// only accept the user's own contact
	if contact.UserID != 0 && contact.UserID != sndr.ID {
		return nil
	}

	if err := a.profiles.SetPhone(ctx, sndr.ID, contact.PhoneNumber); err != nil {
		logger.Warn(ctx, "app", "profile.phone.fail",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return tghelpers.SendText(c, a.text(a.language(c), "wf.error.generic"))
	}

	lang := a.language(c)
	if err := c.Send(a.text(lang, "start.contact_saved"), keyboard.RemoveKeyboard()); err != nil {
		return err
	}
	return a.sendMenu(c, lang)
}

func (a *App) handleMenu(c tele.Context) error {
	return a.sendMenu(c, a.language(c))
}

func (a *App) sendMenu(c tele.Context, lang string) error {
	rows := [][]nav.Button{
		{{Label: a.text(lang, "menu.companies"), Token: nav.Token{Content: ContentUserCompany, Action: nav.ActionNav, Page: 1}}},
		{{Label: a.text(lang, "menu.cart"), Token: nav.Token{Content: ContentCart, Action: nav.ActionNav, Page: 1}}},
		{{Label: a.text(lang, "menu.wishlist"), Token: nav.Token{Content: ContentWishlist, Action: nav.ActionNav, Page: 1}}},
		{{Label: a.text(lang, "menu.orders"), Token: nav.Token{Content: ContentOrders, Action: nav.ActionNav, Page: 1}}},
	}
	return tghelpers.SendMD(c, "*"+a.text(lang, "menu.title")+"*", nav.Markup(rows))
}

func (a *App) handleAdmin(c tele.Context) error {
	lang := a.language(c)
	rows := [][]nav.Button{
		{{Label: a.text(lang, "admin.countries"), Token: nav.Token{Content: ContentAdminCountry, Action: nav.ActionNav, Page: 1}}},
		{{Label: a.text(lang, "admin.kitchens"), Token: nav.Token{Content: ContentAdminKitchen, Action: nav.ActionNav, Page: 1}}},
		{{Label: a.text(lang, "admin.companies"), Token: nav.Token{Content: ContentAdminCompany, Action: nav.ActionNav, Page: 1}}},
		{{Label: a.text(lang, "admin.products"), Token: nav.Token{Content: ContentAdminProduct, Action: nav.ActionNav, Page: 1}}},
	}
	return tghelpers.SendMD(c, "*"+a.text(lang, "admin.title")+"*", nav.Markup(rows))
}

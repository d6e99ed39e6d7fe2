package app

import (
	"log/slog"
	"strings"

	"github.com/smakfood/smakbot/core/logger"
	"github.com/smakfood/smakbot/core/telegram/format"
	tghelpers "github.com/smakfood/smakbot/core/telegram/helpers"
	"github.com/smakfood/smakbot/internal/nav"

	tele "gopkg.in/telebot.v4"
)

func (a *App) registerCallbackRoutes() {
	r := a.callbacks

	r.Handle("lang.set", nav.Match(ContentLanguage, actionSetLanguage), a.handleSetLanguage)

	r.Handle("admin-country.details", nav.Match(ContentAdminCountry, nav.ActionDetails), a.adminCountryDetails)
	r.Handle("admin-kitchen.details", nav.Match(ContentAdminKitchen, nav.ActionDetails), a.adminKitchenDetails)
	r.Handle("admin-company.details", nav.Match(ContentAdminCompany, nav.ActionDetails), a.adminCompanyDetails)
	r.Handle("admin-product.details", nav.Match(ContentAdminProduct, nav.ActionDetails), a.adminProductDetails)
	r.Handle("user-product.details", nav.Match(ContentUserProduct, nav.ActionDetails), a.userProductDetails)

	r.Handle("cart.mutate", nav.MatchAction(actionCartAdd, actionCartDel), a.handleCartAction)
	r.Handle("wishlist.mutate", nav.MatchAction(actionWishAdd, actionWishDel), a.handleWishlistAction)

	a.engine.Bind(r)

	// navigation catches nav/back for every content type, registered last so
	// entity-specific routes win
	r.Handle("navigate", nav.MatchAction(nav.ActionNav, nav.ActionBack), a.handleNavigate)
}

func (a *App) handleNavigate(c tele.Context, tok nav.Token) error {
	return a.controller.Navigate(tghelpers.BuildContext(c), nav.NewMessenger(c), tok, a.language(c), false)
}

// respondGenericError surfaces a remote failure as a one-off alert.
func (a *App) respondGenericError(c tele.Context, err error) error {
	ctx := tghelpers.BuildContext(c)
	logger.Warn(ctx, "nav", "details.fail",
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
	return c.Respond(&tele.CallbackResponse{
		Text:      a.text(a.language(c), "nav.error.generic"),
		ShowAlert: true,
	})
}

// showDetails replaces the list message with an entity card. Admin cards get
// edit/delete controls; the back button restores the originating list page.
func (a *App) showDetails(c tele.Context, tok nav.Token, caption, media string, admin bool) error {
	lang := a.language(c)

	var rows [][]nav.Button
	if admin {
		rows = append(rows, []nav.Button{
			{
				Label: a.text(lang, "common.edit"),
				Token: nav.Token{Content: tok.Content, Action: nav.ActionEdit, Page: tok.Page, EntityID: tok.EntityID, Extra: tok.Extra},
			},
			{
				Label: a.text(lang, "common.delete"),
				Token: nav.Token{Content: tok.Content, Action: nav.ActionDelete, Page: tok.Page, EntityID: tok.EntityID, Extra: tok.Extra},
			},
		})
	}
	rows = append(rows, []nav.Button{{
		Label: a.text(lang, "common.back"),
		Token: nav.Token{Content: tok.Content, Action: nav.ActionNav, Page: tok.Page, Extra: tok.Extra},
	}})

	m := nav.NewMessenger(c)
	var err error
	if media != "" {
		err = m.EditMedia(media, caption, rows)
	} else {
		err = m.EditText(caption, rows)
	}
	if err != nil {
		return a.respondGenericError(c, err)
	}
	return c.Respond()
}

func (a *App) adminCountryDetails(c tele.Context, tok nav.Token) error {
	country, err := a.svc.countries.GetByID(tghelpers.BuildContext(c), tok.EntityID)
	if err != nil {
		return a.respondGenericError(c, err)
	}
	caption := strings.Join([]string{
		"Title ua: " + country.TitleUA,
		"Title en: " + country.TitleEN,
	}, "\n")
	return a.showDetails(c, tok, caption, "", true)
}

func (a *App) adminKitchenDetails(c tele.Context, tok nav.Token) error {
	kitchen, err := a.svc.kitchens.GetByID(tghelpers.BuildContext(c), tok.EntityID)
	if err != nil {
		return a.respondGenericError(c, err)
	}
	caption := strings.Join([]string{
		"Title ua: " + kitchen.TitleUA,
		"Title en: " + kitchen.TitleEN,
		"Country: " + kitchen.CountryID,
	}, "\n")
	return a.showDetails(c, tok, caption, "", true)
}

func (a *App) adminCompanyDetails(c tele.Context, tok nav.Token) error {
	company, err := a.svc.companies.GetByID(tghelpers.BuildContext(c), tok.EntityID)
	if err != nil {
		return a.respondGenericError(c, err)
	}
	caption := strings.Join([]string{
		"Title: " + company.Title,
		"Description ua: " + company.DescriptionUA,
		"Description en: " + company.DescriptionEN,
		"Phone: " + company.Phone,
		"Kitchen: " + company.KitchenID,
	}, "\n")
	return a.showDetails(c, tok, caption, company.Photo, true)
}

func (a *App) adminProductDetails(c tele.Context, tok nav.Token) error {
	product, err := a.svc.products.GetByID(tghelpers.BuildContext(c), tok.EntityID)
	if err != nil {
		return a.respondGenericError(c, err)
	}
	caption := strings.Join([]string{
		"Title ua: " + product.TitleUA,
		"Title en: " + product.TitleEN,
		"Price: " + product.Price,
		"Company: " + product.CompanyID,
	}, "\n")
	return a.showDetails(c, tok, caption, product.Photo, true)
}

func (a *App) userProductDetails(c tele.Context, tok nav.Token) error {
	product, err := a.svc.products.GetByID(tghelpers.BuildContext(c), tok.EntityID)
	if err != nil {
		return a.respondGenericError(c, err)
	}

	lang := a.language(c)
	description := product.DescriptionUA
	if lang == "en" && product.DescriptionEN != "" {
		description = product.DescriptionEN
	}
	caption := "*" + mdEscape(productTitle(product, lang)) + "*\n" +
		mdEscape(description) + "\n" +
		mdEscape(product.Price)

	rows := [][]nav.Button{
		{
			{
				Label: a.text(lang, "menu.cart"),
				Token: nav.Token{Content: ContentCart, Action: actionCartAdd, Page: tok.Page, EntityID: product.ID, Extra: tok.Extra},
			},
			{
				Label: a.text(lang, "menu.wishlist"),
				Token: nav.Token{Content: ContentWishlist, Action: actionWishAdd, Page: tok.Page, EntityID: product.ID, Extra: tok.Extra},
			},
		},
		{{
			Label: a.text(lang, "common.back"),
			Token: nav.Token{Content: ContentUserProduct, Action: nav.ActionNav, Page: tok.Page, Extra: tok.Extra},
		}},
	}

	markup := nav.Markup(rows)
	var sendErr error
	if product.Photo != "" {
		photo := &tele.Photo{File: nav.MediaFile(product.Photo), Caption: caption}
		sendErr = c.Edit(photo, markup, tele.ModeMarkdown)
	} else {
		sendErr = tghelpers.EditMD(c, caption, markup)
	}
	if sendErr != nil {
		return a.respondGenericError(c, sendErr)
	}
	return c.Respond()
}

// mdEscape guards remote catalog text against markdown injection in captions.
func mdEscape(s string) string {
	out, err := format.EscapeMarkdown(s, format.MarkdownV1)
	if err != nil {
		return s
	}
	return out
}

func (a *App) handleCartAction(c tele.Context, tok nav.Token) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	lang := a.language(c)

	switch tok.Action {
	case actionCartAdd:
		if _, err := a.svc.cart.Create(ctx, userID, map[string]string{"product_id": tok.EntityID}); err != nil {
			return a.respondGenericError(c, err)
		}
		return c.Respond(&tele.CallbackResponse{Text: a.text(lang, "cart.added")})
	case actionCartDel:
		if err := a.svc.cart.Delete(ctx, tok.EntityID, userID); err != nil {
			return a.respondGenericError(c, err)
		}
		// re-render the cart so the removed line disappears
		listTok := nav.Token{Content: ContentCart, Action: nav.ActionNav, Page: max(tok.Page, 1)}
		return a.controller.Navigate(ctx, nav.NewMessenger(c), listTok, lang, false)
	}
	return c.Respond()
}

func (a *App) handleWishlistAction(c tele.Context, tok nav.Token) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	lang := a.language(c)

	switch tok.Action {
	case actionWishAdd:
		if _, err := a.svc.wishlist.Create(ctx, userID, map[string]string{"product_id": tok.EntityID}); err != nil {
			return a.respondGenericError(c, err)
		}
		return c.Respond(&tele.CallbackResponse{Text: a.text(lang, "wishlist.added")})
	case actionWishDel:
		if err := a.svc.wishlist.Delete(ctx, tok.EntityID, userID); err != nil {
			return a.respondGenericError(c, err)
		}
		listTok := nav.Token{Content: ContentWishlist, Action: nav.ActionNav, Page: max(tok.Page, 1)}
		return a.controller.Navigate(ctx, nav.NewMessenger(c), listTok, lang, false)
	}
	return c.Respond()
}

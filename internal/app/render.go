package app

import (
	"context"
	"strconv"
	"strings"

	"github.com/smakfood/smakbot/core/logger"
	"github.com/smakfood/smakbot/core/telegram/keyboard"
	"github.com/smakfood/smakbot/internal/catalog"
	"github.com/smakfood/smakbot/internal/nav"
)

func (a *App) registerResolvers() {
	a.resolvers.Register(ContentAdminCountry, a.renderAdminCountries)
	a.resolvers.Register(ContentAdminKitchen, a.renderAdminKitchens)
	a.resolvers.Register(ContentAdminCompany, a.renderAdminCompanies)
	a.resolvers.Register(ContentAdminProduct, a.renderAdminProducts)
	a.resolvers.Register(ContentUserCompany, a.renderUserCompanies)
	a.resolvers.Register(ContentUserProduct, a.renderUserProducts)
	a.resolvers.Register(ContentCart, a.renderCart)
	a.resolvers.Register(ContentWishlist, a.renderWishlist)
	a.resolvers.Register(ContentOrders, a.renderOrders)
}

// adminListView renders one page of an admin-managed collection: a details
// button per item and a trailing add button.
func adminListView[T any](
	a *App, ctx context.Context, svc *catalog.Service[T],
	content, titleKey string, page int, lang, extra string,
	label func(T, string) string, entityID func(T) string,
) (nav.View, error) {
	p, err := svc.List(ctx, page, a.cfg.Catalog.PageSize, nil)
	if err != nil {
		return nav.View{}, err
	}

	rows := make([][]nav.Button, 0, len(p.Items)+1)
	for _, item := range p.Items {
		rows = append(rows, []nav.Button{{
			Label: label(item, lang),
			Token: nav.Token{Content: content, Action: nav.ActionDetails, Page: page, EntityID: entityID(item), Extra: extra},
		}})
	}
	rows = append(rows, []nav.Button{{
		Label: a.text(lang, "common.add"),
		Token: nav.Token{Content: content, Action: nav.ActionAdd, Page: page, Extra: extra},
	}})

	return nav.View{
		Caption:    a.text(lang, titleKey),
		TotalPages: max(p.TotalPages, 1),
		ItemRows:   rows,
	}, nil
}

func (a *App) renderAdminCountries(ctx context.Context, page int, lang, extra string) (nav.View, error) {
	return adminListView(a, ctx, a.svc.countries, ContentAdminCountry, "admin.countries", page, lang, extra,
		countryTitle, func(c catalog.Country) string { return c.ID })
}

func (a *App) renderAdminKitchens(ctx context.Context, page int, lang, extra string) (nav.View, error) {
	return adminListView(a, ctx, a.svc.kitchens, ContentAdminKitchen, "admin.kitchens", page, lang, extra,
		kitchenTitle, func(k catalog.Kitchen) string { return k.ID })
}

func (a *App) renderAdminCompanies(ctx context.Context, page int, lang, extra string) (nav.View, error) {
	return adminListView(a, ctx, a.svc.companies, ContentAdminCompany, "admin.companies", page, lang, extra,
		func(c catalog.Company, _ string) string { return c.Title },
		func(c catalog.Company) string { return c.ID })
}

func (a *App) renderAdminProducts(ctx context.Context, page int, lang, extra string) (nav.View, error) {
	return adminListView(a, ctx, a.svc.products, ContentAdminProduct, "admin.products", page, lang, extra,
		productTitle, func(p catalog.Product) string { return p.ID })
}

// renderUserCompanies lists restaurants; extra optionally filters by kitchen.
func (a *App) renderUserCompanies(ctx context.Context, page int, lang, extra string) (nav.View, error) {
	filters := map[string]string{}
	if extra != "" {
		filters["kitchen_id"] = extra
	}
	p, err := a.svc.companies.List(ctx, page, a.cfg.Catalog.PageSize, filters)
	if err != nil {
		return nav.View{}, err
	}

	// restaurant titles are short, two fit per row
	buttons := make([]nav.Button, 0, len(p.Items))
	for _, company := range p.Items {
		buttons = append(buttons, nav.Button{
			Label: company.Title,
			Token: nav.Token{Content: ContentUserProduct, Action: nav.ActionNav, Page: 1, Extra: company.ID},
		})
	}

	return nav.View{
		Caption:    a.text(lang, "menu.companies"),
		TotalPages: max(p.TotalPages, 1),
		ItemRows:   keyboard.Chunk(buttons, 2),
	}, nil
}

// renderUserProducts lists one restaurant's dishes; extra carries the
// company id so page turns stay inside the restaurant.
func (a *App) renderUserProducts(ctx context.Context, page int, lang, extra string) (nav.View, error) {
	filters := map[string]string{}
	if extra != "" {
		filters["company_id"] = extra
	}
	p, err := a.svc.products.List(ctx, page, a.cfg.Catalog.PageSize, filters)
	if err != nil {
		return nav.View{}, err
	}

	rows := make([][]nav.Button, 0, len(p.Items)+1)
	for _, product := range p.Items {
		rows = append(rows, []nav.Button{{
			Label: productTitle(product, lang) + " — " + product.Price,
			Token: nav.Token{Content: ContentUserProduct, Action: nav.ActionDetails, Page: page, EntityID: product.ID, Extra: extra},
		}})
	}
	rows = append(rows, []nav.Button{{
		Label: a.text(lang, "common.back"),
		Token: nav.Token{Content: ContentUserCompany, Action: nav.ActionBack, Page: 1},
	}})

	return nav.View{
		Caption:    a.text(lang, "menu.companies"),
		TotalPages: max(p.TotalPages, 1),
		ItemRows:   rows,
	}, nil
}

func (a *App) renderCart(ctx context.Context, page int, lang, extra string) (nav.View, error) {
	userID := logger.UserIDFrom(ctx)
	p, err := a.svc.cart.List(ctx, page, a.cfg.Catalog.PageSize, userFilter(userID))
	if err != nil {
		return nav.View{}, err
	}
	if len(p.Items) == 0 {
		return nav.View{Caption: a.text(lang, "cart.empty"), TotalPages: 1}, nil
	}

	var b strings.Builder
	b.WriteString(a.text(lang, "cart.title"))
	rows := make([][]nav.Button, 0, len(p.Items))
	for _, item := range p.Items {
		b.WriteString("\n")
		b.WriteString(item.Title)
		b.WriteString(" x")
		b.WriteString(strconv.Itoa(item.Quantity))
		b.WriteString(" — ")
		b.WriteString(item.Price)
		rows = append(rows, []nav.Button{{
			Label: "✖ " + item.Title,
			Token: nav.Token{Content: ContentCart, Action: actionCartDel, Page: page, EntityID: item.ID},
		}})
	}

	return nav.View{
		Caption:    b.String(),
		TotalPages: max(p.TotalPages, 1),
		ItemRows:   rows,
	}, nil
}

func (a *App) renderWishlist(ctx context.Context, page int, lang, extra string) (nav.View, error) {
	userID := logger.UserIDFrom(ctx)
	p, err := a.svc.wishlist.List(ctx, page, a.cfg.Catalog.PageSize, userFilter(userID))
	if err != nil {
		return nav.View{}, err
	}
	if len(p.Items) == 0 {
		return nav.View{Caption: a.text(lang, "wishlist.empty"), TotalPages: 1}, nil
	}

	rows := make([][]nav.Button, 0, len(p.Items))
	for _, item := range p.Items {
		rows = append(rows, []nav.Button{
			{
				Label: "🛒 " + item.Title,
				Token: nav.Token{Content: ContentCart, Action: actionCartAdd, Page: page, EntityID: item.ProductID},
			},
			{
				Label: "✖",
				Token: nav.Token{Content: ContentWishlist, Action: actionWishDel, Page: page, EntityID: item.ID},
			},
		})
	}

	return nav.View{
		Caption:    a.text(lang, "wishlist.title"),
		TotalPages: max(p.TotalPages, 1),
		ItemRows:   rows,
	}, nil
}

func (a *App) renderOrders(ctx context.Context, page int, lang, extra string) (nav.View, error) {
	userID := logger.UserIDFrom(ctx)
	p, err := a.svc.orders.List(ctx, page, a.cfg.Catalog.PageSize, userFilter(userID))
	if err != nil {
		return nav.View{}, err
	}
	if len(p.Items) == 0 {
		return nav.View{Caption: a.text(lang, "orders.empty"), TotalPages: 1}, nil
	}

	var b strings.Builder
	b.WriteString(a.text(lang, "orders.title"))
	for _, order := range p.Items {
		b.WriteString("\n#")
		b.WriteString(order.ID)
		b.WriteString(" · ")
		b.WriteString(order.Status)
		b.WriteString(" · ")
		b.WriteString(order.Total)
	}

	return nav.View{
		Caption:    b.String(),
		TotalPages: max(p.TotalPages, 1),
	}, nil
}

func userFilter(userID int64) map[string]string {
	if userID == 0 {
		return nil
	}
	return map[string]string{"telegram_id": strconv.FormatInt(userID, 10)}
}

func countryTitle(c catalog.Country, lang string) string {
	if lang == "en" && c.TitleEN != "" {
		return c.TitleEN
	}
	if c.TitleUA != "" {
		return c.TitleUA
	}
	return c.TitleEN
}

func kitchenTitle(k catalog.Kitchen, lang string) string {
	if lang == "en" && k.TitleEN != "" {
		return k.TitleEN
	}
	if k.TitleUA != "" {
		return k.TitleUA
	}
	return k.TitleEN
}

func productTitle(p catalog.Product, lang string) string {
	if lang == "en" && p.TitleEN != "" {
		return p.TitleEN
	}
	if p.TitleUA != "" {
		return p.TitleUA
	}
	return p.TitleEN
}

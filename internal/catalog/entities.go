package catalog

// Taxonomy and catalog entities as the remote API serves them. IDs are kept
// as strings end to end; callback payloads carry them verbatim.

type Country struct {
	ID      string `json:"id"`
	TitleUA string `json:"title_ua"`
	TitleEN string `json:"title_en"`
}

type Kitchen struct {
	ID        string `json:"id"`
	TitleUA   string `json:"title_ua"`
	TitleEN   string `json:"title_en"`
	CountryID string `json:"country_id"`
}

type Company struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	DescriptionUA string `json:"description_ua"`
	DescriptionEN string `json:"description_en"`
	Phone         string `json:"phone"`
	KitchenID     string `json:"kitchen_id"`
	Photo         string `json:"photo"`
}

type Product struct {
	ID            string `json:"id"`
	TitleUA       string `json:"title_ua"`
	TitleEN       string `json:"title_en"`
	DescriptionUA string `json:"description_ua"`
	DescriptionEN string `json:"description_en"`
	Price         string `json:"price"`
	CompanyID     string `json:"company_id"`
	Photo         string `json:"photo"`
}

type CartItem struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type WishlistItem struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
}

type Order struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Total     string `json:"total"`
	CreatedAt string `json:"created_at"`
}

// Page is one page of a listing plus the page count the API derived from the
// requested limit.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalPages int `json:"total_pages"`
}

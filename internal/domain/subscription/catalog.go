package subscription

type Mode string

const (
	ModePayment      Mode = "payment"
	ModeSubscription Mode = "subscription"
)

type Product struct {
	ID          string `json:"id"`
	PriceID     string `json:"price_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Mode        Mode   `json:"mode"`
	Price       string `json:"price"`
}

type Catalog []Product

// DefaultCatalog is the product list sold through checkout.
var DefaultCatalog = Catalog{ //nolint: gochecknoglobals
	{
		ID:          "prod_SstdJiFTZ1nLkY",
		PriceID:     "price_1Rx7qeETBte9tCIcutDIt3St",
		Name:        "Glow Guide Monthly Subscription",
		Description: "Your personal beauty & wellness companion with monthly insights and personalized transformation plans",
		Mode:        ModeSubscription,
		Price:       "$4.99/month",
	},
}

func (c Catalog) ByID(id string) (Product, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func (c Catalog) ByPriceID(priceID string) (Product, bool) {
	for _, p := range c {
		if p.PriceID == priceID {
			return p, true
		}
	}
	return Product{}, false
}

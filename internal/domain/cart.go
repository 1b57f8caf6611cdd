package domain

// Variant is one purchasable option of a product. Price 0 means the variant
// inherits the product's base price.
type Variant struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	DiscountPrice float64 `json:"discount_price"`
}

type Product struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Thumbnail     string    `json:"thumbnail"`
	Price         float64   `json:"price"`
	DiscountPrice float64   `json:"discount_price"`
	Variants      []Variant `json:"variants"`
}

// CartLine is one cart entry for a specific variant. ID equals the variant id,
// so re-adding the same variant merges into the existing line.
type CartLine struct {
	ID        string  `json:"id"`
	VariantID string  `json:"variant_id"`
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Cart is the persisted snapshot shape. Lines keep insertion order, which is
// also display order.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// UnitPriceFor resolves the price a cart line should carry for the given
// variant: the variant price when set, the product base price otherwise, and
// the discount price when one is active and actually lower.
func (p *Product) UnitPriceFor(variantID string) float64 {
	base := p.Price
	discount := p.DiscountPrice
	for _, v := range p.Variants {
		if v.ID == variantID {
			if v.Price > 0 {
				base = v.Price
			}
			discount = v.DiscountPrice
			break
		}
	}
	if discount > 0 && discount < base {
		return discount
	}
	return base
}

package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemRequest is the body of add and update. Both productId and product_id
// are accepted.
type ItemRequest struct {
	ProductID      *uuid.UUID `json:"productId"`
	ProductIDSnake *uuid.UUID `json:"product_id"`
	Quantity       int        `json:"quantity"`
}

// Product returns whichever product id the client sent.
func (r ItemRequest) Product() uuid.UUID {
	if r.ProductID != nil {
		return *r.ProductID
	}
	if r.ProductIDSnake != nil {
		return *r.ProductIDSnake
	}
	return uuid.Nil
}

// ItemDTO is one cart line joined with live product data.
type ItemDTO struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      *string         `json:"image_url"`
	StockQuantity int             `json:"stock_quantity"`
	Quantity      int             `json:"quantity"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// CartDTO is the response of GET /cart.
type CartDTO struct {
	CartID   uuid.UUID       `json:"cart_id"`
	Items    []ItemDTO       `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// ItemResult is returned by add, update and remove. Quantity is the stored
// quantity after the change and is omitted on removal.
type ItemResult struct {
	Message   string    `json:"message"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity,omitempty"`
}

type CheckoutResult struct {
	Message      string          `json:"message"`
	ItemsCleared int             `json:"items_cleared"`
	Total        decimal.Decimal `json:"total"`
}

func toItems(rows []itemRow) ([]ItemDTO, decimal.Decimal) {
	items := make([]ItemDTO, 0, len(rows))
	subtotal := decimal.Zero
	for _, row := range rows {
		line := lineTotal(row.Price, row.Quantity)
		subtotal = subtotal.Add(line)
		items = append(items, ItemDTO{
			ProductID:     row.ProductID,
			Name:          row.Name,
			Price:         row.Price,
			ImageURL:      row.ImageURL,
			StockQuantity: row.StockQuantity,
			Quantity:      row.Quantity,
			LineTotal:     line,
		})
	}
	return items, subtotal
}

func lineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

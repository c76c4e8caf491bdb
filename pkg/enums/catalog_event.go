package enums

import "fmt"

// CatalogEventType names a product catalog mutation broadcast to subscribers.
type CatalogEventType string

const (
	CatalogEventProductAdded    CatalogEventType = "product_added"
	CatalogEventProductUpdated  CatalogEventType = "product_updated"
	CatalogEventProductDeleted  CatalogEventType = "product_deleted"
	CatalogEventProductsChanged CatalogEventType = "products_changed"
)

var validCatalogEventTypes = []CatalogEventType{
	CatalogEventProductAdded,
	CatalogEventProductUpdated,
	CatalogEventProductDeleted,
	CatalogEventProductsChanged,
}

func (c CatalogEventType) String() string {
	return string(c)
}

func (c CatalogEventType) IsValid() bool {
	for _, candidate := range validCatalogEventTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseCatalogEventType(value string) (CatalogEventType, error) {
	for _, candidate := range validCatalogEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid catalog event type %q", value)
}

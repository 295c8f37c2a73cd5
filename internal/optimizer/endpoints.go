package optimizer

import "strings"

// Optimizer endpoint names.
const (
	// EndpointProducts prices the basket with nationwide chain cards.
	EndpointProducts = "products"
	// EndpointNearbyProducts prices the basket with the cards of stores
	// inside the search radius.
	EndpointNearbyProducts = "nearby-products"
)

// Endpoints is the fixed dispatch order.
var Endpoints = []string{EndpointProducts, EndpointNearbyProducts}

// Cards maps an endpoint name to the discount cards sent with it.
type Cards map[string][]string

// DefaultDiscountCards is the built-in card table. The nearby endpoint picks
// cards from the stores it finds, so it is sent none.
var DefaultDiscountCards = Cards{
	EndpointProducts:       {"Лента", "Перекрёсток", "Дикси", "Магнит"},
	EndpointNearbyProducts: {},
}

// For returns a copy of the cards for endpoint. Unknown endpoints get an
// empty, non-nil list.
func (c Cards) For(endpoint string) []string {
	cards := c[endpoint]
	out := make([]string, len(cards))
	copy(out, cards)
	return out
}

// Clone returns a deep copy of the table.
func (c Cards) Clone() Cards {
	out := make(Cards, len(c))
	for endpoint := range c {
		out[endpoint] = c.For(endpoint)
	}
	return out
}

// IsEndpoint reports whether name is one of the known endpoints.
func IsEndpoint(name string) bool {
	for _, e := range Endpoints {
		if e == name {
			return true
		}
	}
	return false
}

// EndpointURL joins the service base URL and an endpoint name. Trailing
// slashes on the base are dropped.
func EndpointURL(baseURL, endpoint string) string {
	return strings.TrimRight(baseURL, "/") + "/" + endpoint
}

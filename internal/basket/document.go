// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the basket Document and the request fields injected into
// it before it is sent to the optimizer.
//
// The basket itself is opaque to this tool: whatever the user put in the file
// (products, amounts, metadata) is forwarded untouched. Only four top-level
// keys are owned by the tool and they are overwritten on every request.
package basket

// Keys injected into every optimizer request body.
const (
	KeyPoint         = "point"
	KeyRadius        = "radius"
	KeyExchange      = "exchange"
	KeyDiscountCards = "discount_cards"
)

// Point is the user's location.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Document is a decoded basket. Its shape is defined by the optimizer
// service, not by this package.
type Document map[string]any

// With returns a shallow copy of the document with the request fields set.
// The receiver is left untouched, so one loaded basket can feed several
// requests. A nil cards slice is sent as an empty list, never as null.
func (d Document) With(point Point, radius, exchange int, cards []string) Document {
	out := make(Document, len(d)+4)
	for k, v := range d {
		out[k] = v
	}

	if cards == nil {
		cards = []string{}
	}

	out[KeyPoint] = point
	out[KeyRadius] = radius
	out[KeyExchange] = exchange
	out[KeyDiscountCards] = cards
	return out
}

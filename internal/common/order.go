package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"tickbook/internal/engine"
)

// WireOrder is the boundary representation of an order as it crosses the
// ingress tier: everything a client sends in, or the exchange echoes back, to
// identify one order-entry request. UUID is a correlation id the ingress tier
// assigns when the order arrives, distinct from the engine's own monotonic OrderID — the engine never sees it
// and never needs to.
type WireOrder struct {
	UUID          uuid.UUID
	OrderType     engine.OrderType
	Side          engine.Side
	LimitPrice    int64
	Quantity      int64
	TotalQuantity int64
	Timestamp     time.Time // time of arrival at the ingress tier
	ExchTimestamp time.Time // time of admission into the book
	Owner         engine.TraderID
}

func (order WireOrder) String() string {
	return fmt.Sprintf(
		`UUID:          %v
OrderType:     %v
Side:          %v
LimitPrice:    %d
Quantity:      %d (Total: %d)
Timestamp:     %v
ExchTimestamp: %v
Owner:         %d`,
		order.UUID,
		order.OrderType,
		order.Side,
		order.LimitPrice,
		order.Quantity,
		order.TotalQuantity,
		order.Timestamp.Format(time.RFC3339),
		order.ExchTimestamp.Format(time.RFC3339),
		order.Owner,
	)
}

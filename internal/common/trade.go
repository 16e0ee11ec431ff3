package common

import (
	"fmt"
	"time"

	"tickbook/internal/engine"
)

// WireTrade is the boundary representation of one executed match, built from
// an engine.Transaction plus the time it crossed the ingress boundary. The
// ingress tier broadcasts its fields to every connected session.
type WireTrade struct {
	TakerTraderID engine.TraderID
	MakerTraderID engine.TraderID
	TakerOrderID  engine.OrderID
	MakerOrderID  engine.OrderID
	Price         int64
	Quantity      int64
	Timestamp     time.Time
}

// FromTransaction builds a WireTrade from the engine's internal Transaction,
// stamping it with the time it crossed this boundary.
func FromTransaction(tx engine.Transaction, at time.Time) WireTrade {
	return WireTrade{
		TakerTraderID: tx.TakerTraderID,
		MakerTraderID: tx.MakerTraderID,
		TakerOrderID:  tx.TakerOrderID,
		MakerOrderID:  tx.MakerOrderID,
		Price:         tx.Price,
		Quantity:      tx.Quantity,
		Timestamp:     at,
	}
}

func (t WireTrade) String() string {
	return fmt.Sprintf(
		`TakerOrderID:   %d (trader %d)
MakerOrderID:   %d (trader %d)
Timestamp:      %v
Quantity:       %d
Price:          %d`,
		t.TakerOrderID, t.TakerTraderID,
		t.MakerOrderID, t.MakerTraderID,
		t.Timestamp.Format(time.RFC3339),
		t.Quantity,
		t.Price,
	)
}

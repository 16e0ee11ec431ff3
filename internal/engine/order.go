package engine

// Order is a resting or in-flight order. Every field but Quantity is immutable
// once admitted. prev/next/level are the intrusive doubly-linked-list links
// that let a PriceLevel hold its FIFO queue without a separate container,
// generalized from the original source's DoublyLinkedList<Order> design: the
// same trick that gives cancel O(1) removal given only the order's id.
type Order struct {
	ID        OrderID
	Side      Side
	Price     int64
	Quantity  int64
	OrderType OrderType
	TraderID  TraderID

	prev, next *Order
	level      *PriceLevel
}

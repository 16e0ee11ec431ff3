package engine

// PriceLevel is the FIFO queue of orders resting at a single price on one
// side of the book. The queue is an intrusive doubly-linked list threaded
// through each Order's prev/next fields, grounded on the original source's
// DoublyLinkedList: append and remove are O(1) given an order handle, which
// an array-backed deque cannot offer without shifting elements.
type PriceLevel struct {
	Price             int64
	AggregateQuantity int64

	head, tail *Order
	length     int
}

// newPriceLevel creates a level seeded with a single order.
func newPriceLevel(order *Order) *PriceLevel {
	level := &PriceLevel{Price: order.Price}
	level.Append(order)
	return level
}

// Append pushes order onto the tail of the queue.
func (l *PriceLevel) Append(order *Order) {
	order.level = l
	order.next = nil
	if l.tail == nil {
		order.prev = nil
		l.head = order
		l.tail = order
	} else {
		order.prev = l.tail
		l.tail.next = order
		l.tail = order
	}
	l.length++
	l.AggregateQuantity += order.Quantity
}

// PopHead removes and returns the head (oldest) order. Panics if the level is
// empty: a caller popping an empty level has already broken invariant 2, an
// impossible state per the error taxonomy, not a condition to handle gracefully.
func (l *PriceLevel) PopHead() *Order {
	if l.head == nil {
		panic("engine: PopHead on empty PriceLevel")
	}
	order := l.head
	l.remove(order)
	return order
}

// Remove unlinks order from an arbitrary position in the queue in O(1).
func (l *PriceLevel) Remove(order *Order) {
	l.remove(order)
}

func (l *PriceLevel) remove(order *Order) {
	if order.prev != nil {
		order.prev.next = order.next
	} else {
		l.head = order.next
	}
	if order.next != nil {
		order.next.prev = order.prev
	} else {
		l.tail = order.prev
	}
	order.prev = nil
	order.next = nil
	order.level = nil
	l.length--
	l.AggregateQuantity -= order.Quantity
}

// Head returns the oldest resting order, or nil if the level is empty.
func (l *PriceLevel) Head() *Order {
	return l.head
}

// Tail returns the most recently admitted order, or nil if the level is empty.
func (l *PriceLevel) Tail() *Order {
	return l.tail
}

// Length returns the number of resting orders at this level.
func (l *PriceLevel) Length() int {
	return l.length
}

// Empty reports whether the level currently holds no orders.
func (l *PriceLevel) Empty() bool {
	return l.length == 0
}

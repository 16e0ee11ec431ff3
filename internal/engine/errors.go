package engine

import "errors"

// errNotFound is returned internally when an id index lookup misses; it never
// crosses the public OrderBook/Engine boundary — Cancel and Update treat a
// miss as a silent no-op per spec.md's error taxonomy.
var errNotFound = errors.New("engine: order not found")

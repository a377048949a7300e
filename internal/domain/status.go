package domain

// DeriveStatus computes the status an order should have given its line items,
// overriding the candidate only for committed-or-received orders. It is
// idempotent and must be re-applied after every fulfillment-affecting
// mutation: a single-item action can flip the whole order.
//
// Among line items with a full planned window:
//   - all returned (and at least one such item) -> received
//   - any picked up while the candidate is requested/reservation -> ordered
//   - candidate received but something is unreturned -> ordered
//
// Anything else leaves the candidate unchanged.
func DeriveStatus(candidate OrderStatus, items []LineItem) OrderStatus {
	switch candidate {
	case OrderStatusRequested, OrderStatusReservation, OrderStatusOrdered, OrderStatusReceived:
	default:
		return candidate
	}

	windowed := 0
	returned := 0
	fulfilled := 0
	for _, li := range items {
		if !li.HasPlannedWindow() {
			continue
		}
		windowed++
		if li.FulfilledAt != nil {
			fulfilled++
		}
		if li.ReturnedAt != nil {
			returned++
		}
	}

	if windowed > 0 && returned == windowed {
		return OrderStatusReceived
	}
	if fulfilled > 0 && (candidate == OrderStatusRequested || candidate == OrderStatusReservation) {
		return OrderStatusOrdered
	}
	if candidate == OrderStatusReceived && returned < windowed {
		return OrderStatusOrdered
	}
	return candidate
}

package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusQuote           OrderStatus = "quote"
	OrderStatusQuoteRejected   OrderStatus = "quote_rejected"
	OrderStatusRequested       OrderStatus = "requested"
	OrderStatusRequestRejected OrderStatus = "request_rejected"
	OrderStatusReservation     OrderStatus = "reservation"
	OrderStatusOrdered         OrderStatus = "ordered"
	OrderStatusReceived        OrderStatus = "received"
	OrderStatusClosed          OrderStatus = "closed"
)

// statusSynonyms maps legacy export values to the canonical status set.
// Normalization happens once at the ingestion boundary; everything past the
// repository layer works with canonical values only.
var statusSynonyms = map[string]OrderStatus{
	"quote":            OrderStatusQuote,
	"estimate":         OrderStatusQuote,
	"draft":            OrderStatusQuote,
	"quote_rejected":   OrderStatusQuoteRejected,
	"quote rejected":   OrderStatusQuoteRejected,
	"declined":         OrderStatusQuoteRejected,
	"requested":        OrderStatusRequested,
	"request":          OrderStatusRequested,
	"pending":          OrderStatusRequested,
	"request_rejected": OrderStatusRequestRejected,
	"request rejected": OrderStatusRequestRejected,
	"rejected":         OrderStatusRequestRejected,
	"reservation":      OrderStatusReservation,
	"reserved":         OrderStatusReservation,
	"booked":           OrderStatusReservation,
	"confirmed":        OrderStatusReservation,
	"ordered":          OrderStatusOrdered,
	"order":            OrderStatusOrdered,
	"open":             OrderStatusOrdered,
	"out":              OrderStatusOrdered,
	"received":         OrderStatusReceived,
	"returned":         OrderStatusReceived,
	"complete":         OrderStatusReceived,
	"closed":           OrderStatusClosed,
	"invoiced":         OrderStatusClosed,
	"archived":         OrderStatusClosed,
}

// NormalizeOrderStatus maps a raw status string (legacy imports included) to
// the canonical set. Unrecognized input defaults to quote.
func NormalizeOrderStatus(raw string) OrderStatus {
	if st, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return st
	}
	return OrderStatusQuote
}

// Committed reports whether the status reserves equipment exclusively against
// new bookings.
func (s OrderStatus) Committed() bool {
	switch s {
	case OrderStatusRequested, OrderStatusReservation, OrderStatusOrdered:
		return true
	}
	return false
}

// Fulfillable reports whether pickup/return actions are allowed in this status.
func (s OrderStatus) Fulfillable() bool {
	switch s {
	case OrderStatusRequested, OrderStatusReservation, OrderStatusOrdered, OrderStatusReceived:
		return true
	}
	return false
}

// Reschedulable reports whether line-item end dates may be moved.
func (s OrderStatus) Reschedulable() bool {
	return s == OrderStatusReservation || s == OrderStatusOrdered
}

type RentalOrder struct {
	ID                int32       `json:"id"`
	CompanyID         int32       `json:"company_id"`
	OrderNumber       string      `json:"order_number"`
	Status            OrderStatus `json:"status"` // derived; recomputed after line-item mutations
	CustomerID        int32       `json:"customer_id"`
	CustomerName      string      `json:"customer_name"`
	CustomerEmail     string      `json:"customer_email"`
	FulfillmentMethod string      `json:"fulfillment_method"`
	CreatedOn         time.Time   `json:"created_on"`
	UpdatedOn         time.Time   `json:"updated_on"`
}

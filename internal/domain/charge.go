package domain

import "time"

// ChargeLine is one billable entry for a billing period, produced for the
// accounting-sync collaborator. BatchID groups all lines of one build run.
type ChargeLine struct {
	ID              int32     `json:"id"`
	BatchID         string    `json:"batch_id"`
	CompanyID       int32     `json:"company_id"`
	OrderID         int32     `json:"order_id"`
	LineItemID      int32     `json:"line_item_id"`
	EquipmentTypeID int32     `json:"equipment_type_id"`
	RateBasis       RateBasis `json:"rate_basis"`
	RateAmountCents int32     `json:"rate_amount_cents"`
	Quantity        int32     `json:"quantity"`
	Units           float64   `json:"units"`
	AmountCents     int32     `json:"amount_cents"`
	ChargeStart     time.Time `json:"charge_start"`
	ChargeEnd       time.Time `json:"charge_end"`
	CreatedOn       time.Time `json:"created_on"`
}

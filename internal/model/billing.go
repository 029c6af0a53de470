// Package model defines the core domain models shared across the pipeline.
package model

// BillingLine is one normalized billing transaction. Quantity 0 denotes a
// flat one-time charge that is exempt from tier band lookup. Context fields
// are carried through from the source export verbatim when present.
type BillingLine struct {
	ItemID   string
	Currency string
	Quantity float64
	NetValue float64

	// Optional context carried through to the report unchanged.
	Status       string
	Address      string
	SalesOrg     string
	CreatedOn    string
	SoldTo       string
	ShipTo       string
	OrderNumber  string
	CustomerName string
	Description  string
	CostGroup    string
}

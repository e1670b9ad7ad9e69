package models

// Category is read-only reference data seeded by migrations.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
	// Kind is income, expense or transfer.
	Kind string `json:"kind"`
}

// TransferCategoryID is the seeded category used for wallet <-> family transfers.
const TransferCategoryID = "transfer"

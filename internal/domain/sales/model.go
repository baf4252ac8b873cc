// Package sales processes point-of-sale transactions.
package sales

import (
	"time"

	"slice/internal/core/id"
	"slice/internal/core/types"
)

// Sale is a recorded sale with the price snapshot taken at sale time.
type Sale struct {
	ID              id.ID       `db:"id" json:"id"`
	BranchID        id.ID       `db:"branch_id" json:"branchId"`
	ProductID       id.ID       `db:"product_id" json:"productId"`
	ProductName     string      `db:"product_name" json:"productName"`
	QuantitySold    int64       `db:"quantity_sold" json:"quantitySold"`
	UnitPrice       types.Money `db:"unit_price" json:"unitPrice"`
	TotalAmount     types.Money `db:"total_amount" json:"totalAmount"`
	SoldBy          string      `db:"sold_by" json:"soldBy"`
	TransactionDate time.Time   `db:"transaction_date" json:"transactionDate"`
}

// Input is a sale request from the point of sale.
type Input struct {
	BranchID  id.ID
	ProductID id.ID
	Quantity  int64
	UserID    string
}

// Payload is the body of the sale.processed event.
type Payload struct {
	SaleID      id.ID       `json:"saleId"`
	BranchID    id.ID       `json:"branchId"`
	ProductID   id.ID       `json:"productId"`
	Quantity    int64       `json:"quantity"`
	TotalAmount types.Money `json:"totalAmount"`
}

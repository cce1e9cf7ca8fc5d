package domain

type PaymentType string

const (
	PaymentMoney  PaymentType = "MONEY"
	PaymentDebit  PaymentType = "DEBIT"
	PaymentCredit PaymentType = "CREDIT"
	PaymentPix    PaymentType = "PIX"
	PaymentOther  PaymentType = "OTHER"
)

func (p PaymentType) Valid() bool {
	switch p {
	case PaymentMoney, PaymentDebit, PaymentCredit, PaymentPix, PaymentOther:
		return true
	}
	return false
}

type Sale struct {
	ID          int64       `db:"id" json:"id"`
	UserID      int64       `db:"user_id" json:"user_id"`
	ClientID    *int64      `db:"client_id" json:"client_id"`
	CreatedAt   string      `db:"created_at" json:"created_at"`
	PaymentType PaymentType `db:"payment_type" json:"payment_type"`
	Items       []SaleItem  `db:"-" json:"items"`
	TotalValue  float64     `db:"total_value" json:"total_value"`
}

type SaleItem struct {
	SaleID    int64   `db:"sale_id" json:"sale_id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Quantity  int64   `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
}

// SaleCreate is the creation payload. Unit prices are intentionally
// absent: the server captures them at sale time.
type SaleCreate struct {
	ClientID    *int64           `json:"client_id"`
	PaymentType PaymentType      `json:"payment_type"`
	Items       []SaleItemCreate `json:"items"`
}

type SaleItemCreate struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

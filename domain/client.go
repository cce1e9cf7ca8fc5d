package domain

// Client is a registered customer. CPF is the unique lookup key used
// when attaching a customer to a sale.
type Client struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Surname string `db:"surname" json:"surname"`
	Number  string `db:"number" json:"number"`
	Email   string `db:"email" json:"email"`
	CPF     string `db:"cpf" json:"cpf"`
}

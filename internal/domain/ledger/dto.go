package ledger

type AdjustRequest struct {
	Wallet      string `json:"wallet_address" validate:"required,wallet"`
	Amount      int64  `json:"amount" validate:"required"`
	Description string `json:"description" validate:"required,min=3,max=500"`
}

type HistoryResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int64         `json:"total"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}

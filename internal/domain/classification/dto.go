package classification

type ClassifyRequest struct {
	Wallet           string  `json:"wallet_address" validate:"required,wallet"`
	ImageURL         string  `json:"image_url" validate:"required,url,max=2048"`
	ExpectedCategory string  `json:"expected_category" validate:"required,waste_category"`
	Location         *string `json:"location,omitempty" validate:"omitempty,max=255"`
}

type HistoryResponse struct {
	Classifications []Classification `json:"classifications"`
	Total           int64            `json:"total"`
	Limit           int              `json:"limit"`
	Offset          int              `json:"offset"`
}

package nft

type ReserveRequest struct {
	Wallet string `json:"wallet_address" validate:"required,wallet"`
}

type ClaimRequest struct {
	Wallet string `json:"wallet_address" validate:"required,wallet"`
}

type AddItemRequest struct {
	Name                    string      `json:"name" validate:"required,min=2,max=128"`
	Description             string      `json:"description" validate:"max=1000"`
	ImageURL                string      `json:"image_url" validate:"required,url,max=2048"`
	Category                string      `json:"category" validate:"required,max=64"`
	Rarity                  int         `json:"rarity" validate:"gte=1,lte=5"`
	RequiredScore           int64       `json:"required_score" validate:"gte=0"`
	RequiredClassifications int64       `json:"required_classifications" validate:"gte=0"`
	Attributes              []Attribute `json:"attributes,omitempty"`
}

type BatchAddRequest struct {
	Items []AddItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

package nft

// Metadata is the token metadata document pinned to the content
// store, in the shape marketplaces expect.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes"`
}

type Attribute struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

func buildMetadata(name, description, imageURL, category string, rarity int, extra []Attribute) Metadata {
	attrs := []Attribute{
		{TraitType: "Category", Value: category},
		{TraitType: "Rarity", Value: rarity},
	}
	attrs = append(attrs, extra...)
	return Metadata{
		Name:        name,
		Description: description,
		Image:       imageURL,
		Attributes:  attrs,
	}
}

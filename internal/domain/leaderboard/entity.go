package leaderboard

// Entry is one leaderboard row. Rank is 1-based.
type Entry struct {
	Rank                 int    `db:"-" json:"rank"`
	Wallet               string `db:"wallet_address" json:"wallet_address"`
	NetScore             int64  `db:"net_score" json:"net_score"`
	TotalClassifications int64  `db:"total_classifications" json:"total_classifications"`
	Accuracy             int    `db:"accuracy" json:"accuracy"`
}

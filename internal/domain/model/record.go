package model

// PlayerRecord is one validated leaderboard row.
type PlayerRecord struct {
	Season     int    `json:"season"`
	IGN        string `json:"ign"`
	TopScore   int    `json:"topscore"`
	TotalScore int    `json:"totalscore"`
}

// RankedRecord is a PlayerRecord placed in an export snapshot.
type RankedRecord struct {
	Rank int `json:"rank"`
	PlayerRecord
}

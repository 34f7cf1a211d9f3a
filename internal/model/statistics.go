package model

// Statistics is the aggregate fold over the full trade set.
// Computed on demand, never stored: any mutation can change every field.
type Statistics struct {
	TotalTrades   int     `json:"totalTrades"`
	OpenTrades    int     `json:"openTrades"`
	ClosedTrades  int     `json:"closedTrades"`
	WinningTrades int     `json:"winningTrades"`
	LosingTrades  int     `json:"losingTrades"`
	WinRate       float64 `json:"winRate"`
	TotalPnl      float64 `json:"totalPnl"`
	UnrealizedPnl float64 `json:"unrealizedPnl"`
	TotalExposure float64 `json:"totalExposure"`
	TotalRisk     float64 `json:"totalRisk"`
}

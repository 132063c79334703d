package dto

// CategoryCount is one slice of the category distribution.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// DashboardResponse aggregates the register for the dashboard view.
type DashboardResponse struct {
	TotalDocuments    int64           `json:"total_documents"`
	AwaitingSignature int64           `json:"awaiting_signature"`
	ActivityToday     int64           `json:"activity_today"`
	Categories        []CategoryCount `json:"categories"`
	CacheHit          bool            `json:"cache_hit"`
}

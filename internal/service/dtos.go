package service

// Snapshot holds the headline figures for the most recent reported month.
type Snapshot struct {
	PersonDays          int64 `json:"personDays"`
	Villages            int64 `json:"villages"`
	Families            int64 `json:"families"`
	ActiveWorkers       int64 `json:"activeWorkers"`
	CompletedWorks      int64 `json:"completedWorks"`
	OngoingWorks        int64 `json:"ongoingWorks"`
	WomenPersonDays     int64 `json:"womenPersonDays"`
	AvgDaysPerHousehold int64 `json:"avgDaysPerHousehold"`
}

type HistoryPoint struct {
	Month      string `json:"month"`
	PersonDays int64  `json:"personDays"`
	Families   int64  `json:"families"`
	Villages   int64  `json:"villages"`
}

// DistrictSummary is the dashboard view of one district. HistoricalData is
// ordered oldest first and holds at most six months.
type DistrictSummary struct {
	District       string         `json:"district"`
	CurrentMonth   Snapshot       `json:"currentMonth"`
	HistoricalData []HistoryPoint `json:"historicalData"`
	LastUpdated    string         `json:"lastUpdated"`
}

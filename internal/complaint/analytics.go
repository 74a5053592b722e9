package complaint

// OverallStats summarises the complaint corpus for dashboards.
type OverallStats struct {
	Total          int     `json:"total"`
	Pending        int     `json:"pending"`
	Assigned       int     `json:"assigned"`
	InProgress     int     `json:"inProgress"`
	Resolved       int     `json:"resolved"`
	ResolutionRate float64 `json:"resolutionRate"`
}

// StatusCount is one slice of the status distribution.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// CategoryCount is one slice of the category distribution.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TrendPoint counts submissions per calendar month (YYYY-MM, UTC).
type TrendPoint struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// AgencyPerformance summarises one agency's caseload.
type AgencyPerformance struct {
	AgencyID       string  `json:"agencyId"`
	Total          int     `json:"total"`
	Resolved       int     `json:"resolved"`
	ResolutionRate float64 `json:"resolutionRate"`
}

func resolutionRate(resolved, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(resolved) / float64(total)
}

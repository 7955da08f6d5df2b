package cms

import "time"

// Visit is one recorded page view on a tenant site.
type Visit struct {
	ID        string    `json:"id" db:"id"`
	SiteID    string    `json:"site_id" db:"site_id"`
	IP        string    `json:"ip" db:"ip"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	Path      string    `json:"path" db:"path"`
	Referer   string    `json:"referer,omitempty" db:"referer"`
	Day       time.Time `json:"day" db:"day"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// VisitCounts are page views and unique visitor IPs.
type VisitCounts struct {
	PV int `json:"pv"`
	UV int `json:"uv"`
}

// DailyVisits are the counts of one day.
type DailyVisits struct {
	Date string `json:"date"`
	VisitCounts
}

// PathCount is a path and its page views.
type PathCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// RefererCount is a referring page and the views it sent.
type RefererCount struct {
	Referer string `json:"referer"`
	Count   int    `json:"count"`
}

// VisitStats summarize a date range of one site.
type VisitStats struct {
	DailyStats  []DailyVisits  `json:"daily_stats"`
	TopPaths    []PathCount    `json:"top_paths"`
	TopReferers []RefererCount `json:"top_referers"`
}

// RecentVisit is a row of the live visit feed.
type RecentVisit struct {
	IP        string    `json:"ip"`
	Path      string    `json:"path"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// RealtimeVisits are today's counts and the latest views.
type RealtimeVisits struct {
	Today        VisitCounts   `json:"today"`
	RecentVisits []RecentVisit `json:"recent_visits"`
}

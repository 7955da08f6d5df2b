package config

const (
	// MaxNodeNameLength is the maximum length for folder names and article titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxNodeNameLength = 255

	// MaxFolderDescriptionLength is the maximum length for a folder description.
	MaxFolderDescriptionLength = 2000

	// MaxSubdomainLength is the DNS label limit.
	MaxSubdomainLength = 63

	// MaxSiteNameLength is the maximum length for site display names.
	MaxSiteNameLength = 255

	// MaxTagNameLength is the maximum length for tag names.
	MaxTagNameLength = 50

	// SummaryBlockCount is how many leading content blocks form an article summary.
	SummaryBlockCount = 3

	// DefaultMaxChunkBytes caps a single upload chunk (32 MiB).
	DefaultMaxChunkBytes = 32 << 20

	// MaxShowcaseTextLength bounds carousel and project text fields.
	MaxShowcaseTextLength = 500

	// MaxCarouselButtons caps the call-to-action links on one slide.
	MaxCarouselButtons = 4

	// VisitStatsDefaultDays is the range reported when no dates are given;
	// VisitStatsMaxDays caps an explicit range.
	VisitStatsDefaultDays = 7
	VisitStatsMaxDays     = 366

	// VisitTopN and RecentVisitCount size the visit reports.
	VisitTopN        = 10
	RecentVisitCount = 10

	// DefaultPageSize / MaxPageSize bound paginated article listings.
	DefaultPageSize = 10
	MaxPageSize     = 100
)

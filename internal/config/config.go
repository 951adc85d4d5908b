package config

const (
	DefaultTimeZone = "Asia/Bangkok"

	// Import batching
	ImportBatchSize   = 500
	StagingBatchSize  = 1000
	HeaderScanRows    = 100
	DateGuessSamples  = 200
	DateGuessMinRatio = 0.6

	// Daily summary dispatch
	DefaultSummarySchedule = "0 7 * * *" // 07:00 local, once per day
	SummaryDispatchLag     = 1           // dispatch summaries for (today - lag) days
)

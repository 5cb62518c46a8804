package config

const (
	defaultLogDir                    = "~/.local/share/sweeper/logs"
	defaultReportDir                 = "~/.local/share/sweeper/reports"
	defaultLogLevel                  = "info"
	defaultLogFormat                 = "console"
	defaultCatalogSource             = "sqlite"
	defaultCatalogDatabasePath       = "~/.local/share/sweeper/catalog.db"
	defaultAPIRequestTimeout         = 30
	defaultFuzzyThreshold            = 75
	defaultNgramThreshold            = 40
	defaultNgramSize                 = 3
	defaultSizeOutlierRatio          = 20
	defaultExecutorRequestsPerSecond = 5
	defaultExecutorRequestTimeout    = 15
	defaultNotifyRequestTimeout      = 10
)

// defaultQualityMarkerTags are the tag values treated as verified-provenance
// markers by the quality scorer. Matching is case-insensitive.
var defaultQualityMarkerTags = []string{"lossless", "verified", "high quality"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		LogDir:    defaultLogDir,
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
		ReportDir: defaultReportDir,
		Catalog: Catalog{
			Source:       defaultCatalogSource,
			DatabasePath: defaultCatalogDatabasePath,
			API: API{
				RequestTimeout: defaultAPIRequestTimeout,
			},
		},
		Dedupe: Dedupe{
			FuzzyThreshold:    defaultFuzzyThreshold,
			NgramThreshold:    defaultNgramThreshold,
			NgramSize:         defaultNgramSize,
			QualityMarkerTags: append([]string(nil), defaultQualityMarkerTags...),
			SizeOutlierRatio:  defaultSizeOutlierRatio,
		},
		Executor: Executor{
			RequestsPerSecond: defaultExecutorRequestsPerSecond,
			RequestTimeout:    defaultExecutorRequestTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
	}
}

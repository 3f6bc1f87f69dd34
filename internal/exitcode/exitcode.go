package exitcode

const (
	Success      = 0
	UsageError   = 1
	ConfigError  = 2
	DBConnError  = 3
	SourceError  = 4
	APIError     = 5
	LoadError    = 6
	BillingError = 7
)

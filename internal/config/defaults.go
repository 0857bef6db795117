package config

import "time"

const (
	// DefaultCLIPackage is the bridge package every configuration must go through
	DefaultCLIPackage = "@smithery/cli"
	// DefaultTimeout is how long a launched server is observed
	DefaultTimeout = 30 * time.Second
	// DefaultWaitDelay bounds waiting on output pipes after the process is gone
	DefaultWaitDelay = 2 * time.Second
	// DefaultProcessors is the default number of concurrent tests in a batch
	DefaultProcessors = 4
	// DefaultPort is the HTTP port used by serve
	DefaultPort = 5000
	// DefaultLogLevel is the serve log level
	DefaultLogLevel = "info"
	// DefaultStore is the default report store driver
	DefaultStore = StoreJSON
	// DefaultOutputJSONFile is the default report history file name
	DefaultOutputJSONFile = "test-reports.json"
	// DefaultOutputJSONDir is the default report history directory
	DefaultOutputJSONDir = "storage"
	// DefaultSQLitePath is the default SQLite database file
	DefaultSQLitePath = "storage/reports.db"
	// DefaultHistoryLimit is how many reports history shows
	DefaultHistoryLimit = 20
)

// Report store drivers
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"
)

// DefaultPathsToIgnore are the directories skipped when scanning for configurations
var DefaultPathsToIgnore = []string{
	"node_modules",
	"vendor",
	"storage",
	"dist",
	"build",
}

package config

// Application constants
const (
	// Application Info
	AppName = "gradesync"

	// EnvPrefix namespaces environment overrides, e.g. GRADESYNC_LOGGING_LEVEL.
	EnvPrefix = "GRADESYNC"

	// File Paths (relative to the configuration file's directory)
	DefaultDataDir = "data"
	DefaultLogsDir = "logs"
	DefaultLogFile = "gradesync.log"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultConfigLocations are searched in order when GRADESYNC_CONFIG is unset.
var DefaultConfigLocations = []string{
	"gradesync.yaml",
	"configs/gradesync.yaml",
}

// LetterGradeOrder is the display order of the returning-student grade
// distribution. Labels outside it follow alphabetically.
var LetterGradeOrder = []string{"A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "D-", "F", "N/A"}

package report

import "sync"

// Reporter is responsible for reporting errors, warnings, and other kinds of
// messages to the user during program execution.  The reporter respects the set
// log level and is synchronized: its methods can be safely called from multiple
// goroutines.
type Reporter struct {
	// The mutex used to synchonize different error method calls.
	m *sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// The number of errors and warnings reported so far.
	errorCount, warnCount int
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays only warnings and errors to the user.
	LogLevelVerbose        // Displays all compilation messages to the user (default).
)

// logLevelNames maps the log level names accepted on the command line and in
// profiles to their enumerated log levels.
var logLevelNames = map[string]int{
	"silent":  LogLevelSilent,
	"error":   LogLevelError,
	"warn":    LogLevelWarn,
	"verbose": LogLevelVerbose,
}

// LogLevelFromName converts a log level name into a log level.  Unknown names
// default to verbose.
func LogLevelFromName(name string) int {
	if level, ok := logLevelNames[name]; ok {
		return level
	}

	return LogLevelVerbose
}

// rep is the global reporter instance.  Until it is initialized, all reporting
// functions are silent.
var rep *Reporter

// repInitMutex guards the initialization of the global reporter.
var repInitMutex sync.Mutex

// InitReporter initializes the global error reporter to the given log level. If
// the reporter has already been initialized, this function does nothing.
func InitReporter(logLevel int) {
	repInitMutex.Lock()
	defer repInitMutex.Unlock()

	if rep == nil {
		rep = &Reporter{
			m:        &sync.Mutex{},
			logLevel: logLevel,
		}
	}
}

// enabled returns whether the reporter should display messages at the given
// level.  It also acquires the reporter's lock if it returns true: the caller
// must release it.
func enabled(level int) bool {
	if rep == nil || rep.logLevel < level {
		return false
	}

	rep.m.Lock()
	return true
}

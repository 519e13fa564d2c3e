package report

import (
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Below are all the "aesthetic" reporting functions that will only run if the
// log level is verbose.  These provide additional information about the
// compilation process to the user so as to make the compiler more friendly.

// ReportCompileHeader reports the pre-compilation header.
func ReportCompileHeader(version, project string) {
	if enabled(LogLevelVerbose) {
		defer rep.m.Unlock()

		displayCompileHeader(version, project)
	}
}

// ReportPhase reports that a compilation unit finished a phase.
func ReportPhase(unit, phase string, elapsed time.Duration) {
	if enabled(LogLevelVerbose) {
		defer rep.m.Unlock()

		displayPhase(unit, phase, elapsed)
	}
}

// ReportCompilationFinished reports the concluding message for compilation.
func ReportCompilationFinished(units int) {
	if enabled(LogLevelVerbose) {
		defer rep.m.Unlock()

		displayCompilationFinished(units, rep.errorCount, rep.warnCount)
	}
}

// AnyErrors returns whether or not any errors were reported.
func AnyErrors() bool {
	if rep == nil {
		return false
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	return rep.errorCount > 0
}

// DisplayInfoMessage displays a titled informational message regardless of the
// log level.  It is used for output the user explicitly asked for.
func DisplayInfoMessage(title, message string) {
	InfoStyleBG.Print(title)
	fmt.Println(" " + message)
}

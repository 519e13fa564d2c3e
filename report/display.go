package report

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = pterm.FgLightCyan
	InfoStyleBG    = pterm.NewStyle(pterm.BgLightCyan, pterm.FgBlack)
)

// displayICE displays an internal compiler error message.
func displayICE(message string) {
	ErrorStyleBG.Print("internal compiler error")
	ErrorColorFG.Println(" " + message)
	fmt.Print("This error was not supposed to happen: please open an issue.\n\n")
}

// displayFatal displays a fatal error message.
func displayFatal(message string) {
	ErrorStyleBG.Print("fatal error")
	ErrorColorFG.Println(" " + message)
	fmt.Println()
}

// displayCompileMessage displays a compilation error or warning.  The label is
// the string to prefix the message with: eg. if we want to display an error,
// the label is "error".
func displayCompileMessage(label, file string, span *TextSpan, message string) {
	if label == "error" {
		ErrorStyleBG.Print(label)
	} else {
		WarnStyleBG.Print(label)
	}

	if span == nil {
		fmt.Printf(" %s: %s\n\n", file, message)
		return
	}

	fmt.Printf(" %s:%d:%d: %s\n\n", file, span.StartLine+1, span.StartCol+1, message)

	// Only units backed by a real file can display source text: inline sources
	// and streams are gone by the time errors are reported.
	if finfo, err := os.Stat(file); err == nil && !finfo.IsDir() {
		displaySourceText(file, span)
	}
}

// displayStdError displays a standard Go error.
func displayStdError(err error) {
	ErrorStyleBG.Print("error")
	fmt.Printf(" %s\n\n", err)
}

// -----------------------------------------------------------------------------

// displaySourceText displays a segment of source text defined by a text span.
func displaySourceText(absPath string, span *TextSpan) {
	file, err := os.Open(absPath)
	if err != nil {
		return
	}
	defer file.Close()

	// Collect all the source lines containing the given source text.
	var lines []string
	sc := bufio.NewScanner(file)
	for ln := 0; sc.Scan(); ln++ {
		if span.StartLine <= ln && ln <= span.EndLine {
			lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
		}
	}

	if sc.Err() != nil || len(lines) == 0 {
		return
	}

	// Calculate the minimum line indentation.
	minIndent := math.MaxInt
	for _, line := range lines {
		lineIndent := len(line) - len(strings.TrimLeft(line, " "))
		if lineIndent < minIndent {
			minIndent = lineIndent
		}
	}

	maxLineNumLen := len(strconv.Itoa(span.EndLine + 1))
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	for i, line := range lines {
		InfoColorFG.Print(fmt.Sprintf(lineNumFmtStr, i+span.StartLine+1))
		fmt.Println(line[minIndent:])

		fmt.Print(strings.Repeat(" ", maxLineNumLen), " | ")

		// Underlining starts at the start column on the first line and
		// continues from the margin on every other line.
		carretPrefixCount := 0
		if i == 0 {
			carretPrefixCount = span.StartCol - minIndent
		}

		// The last line is underlined only up to the end column.
		carretEnd := len(line) - minIndent
		if i == len(lines)-1 && span.EndCol-minIndent < carretEnd {
			carretEnd = span.EndCol - minIndent
		}

		carretCount := carretEnd - carretPrefixCount
		if carretPrefixCount < 0 {
			carretPrefixCount = 0
		}
		if carretCount < 1 {
			carretCount = 1
		}

		fmt.Print(strings.Repeat(" ", carretPrefixCount))
		ErrorColorFG.Println(strings.Repeat("^", carretCount))
	}

	fmt.Println()
}

// -----------------------------------------------------------------------------

// displayCompileHeader displays the compiler information before compilation.
func displayCompileHeader(version, project string) {
	fmt.Print("ablac ")
	InfoColorFG.Print("v" + version)
	fmt.Print(" -- project: ")
	InfoColorFG.Println(project)
}

// displayPhase displays the completion of a unit's compilation phase.
func displayPhase(unit, phase string, elapsed time.Duration) {
	(&pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: InfoStyleBG,
			Text:  phase,
		},
	}).Println(fmt.Sprintf("%s (%.3fs)", unit, elapsed.Seconds()))
}

// displayCompilationFinished displays the concluding compilation message.
func displayCompilationFinished(units, errorCount, warnCount int) {
	fmt.Println()

	if errorCount == 0 {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")
	SuccessColorFG.Print(units)
	fmt.Print(" compiled units, ")

	if errorCount == 0 {
		SuccessColorFG.Print(0)
	} else {
		ErrorColorFG.Print(errorCount)
	}
	fmt.Print(" errors, ")

	if warnCount == 0 {
		SuccessColorFG.Print(0)
	} else {
		WarnColorFG.Print(warnCount)
	}
	fmt.Println(" warnings)")
}

package cmd

import (
	"ablac/ast"
	"ablac/common"
	"ablac/report"
	"ablac/syntax"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ComedicChimera/olive"
	"github.com/kr/pretty"
)

// Execute is the main entry point for the `ablac` CLI utility.
func Execute() {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("ablac", "ablac is the compiler for the Abla language", true)
	cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warn", "verbose"})

	buildCmd := cli.AddSubcommand("build", "compile a project or source file", true)
	buildCmd.AddPrimaryArg("path", "the path to the project directory or source file to build", true)
	buildCmd.AddStringArg("profile", "p", "the name of the profile to build", false)
	buildCmd.AddSelectorArg("mode", "m", "the output mode", false, []string{"llvm", "asm", "obj"})

	parseCmd := cli.AddSubcommand("parse", "parse a source file and print its syntax tree", true)
	parseCmd.AddPrimaryArg("path", "the path to the source file", true)

	cli.AddSubcommand("repl", "start an interactive session", false)
	cli.AddSubcommand("version", "print the Abla version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.InitReporter(report.LogLevelError)
		report.ReportFatal("usage error: %s", err)
	}

	logLevel := ""
	if v, ok := result.Arguments["loglevel"]; ok {
		logLevel = v.(string)
	}

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		execBuildCommand(subResult, logLevel)
	case "parse":
		execParseCommand(subResult, logLevel)
	case "repl":
		initReporter(logLevel, "warn")
		NewRepl().Run()
	case "version":
		report.DisplayInfoMessage("Abla Version", common.AblaVersion)
	}
}

// initReporter initializes the reporter with the first log level name given
// that is not empty.
func initReporter(logLevels ...string) {
	for _, name := range logLevels {
		if name != "" {
			report.InitReporter(report.LogLevelFromName(name))
			return
		}
	}

	report.InitReporter(report.LogLevelVerbose)
}

// execBuildCommand executes the build subcommand and handles all errors.
func execBuildCommand(result *olive.ArgParseResult, logLevel string) {
	path, _ := result.PrimaryArg()

	selectedProfile := ""
	if v, ok := result.Arguments["profile"]; ok {
		selectedProfile = v.(string)
	}

	profile, err := LoadProfile(path, selectedProfile)
	if err != nil {
		initReporter(logLevel)
		report.ReportFatal("failed to load profile: %s", err)
	}

	initReporter(logLevel, profile.LogLevel)
	for _, warning := range profile.Warnings {
		report.ReportCompileWarning(common.AblaProfileFileName, nil, "%s", warning)
	}

	if v, ok := result.Arguments["mode"]; ok {
		if err := profile.SetOutputMode(v.(string)); err != nil {
			report.ReportFatal("%s", err)
		}
	}

	// interrupting the build cancels every outstanding unit
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := NewCompiler(profile)
	go func() {
		<-ctx.Done()
		c.svc.Cancel()
	}()

	if !c.Compile(ctx) {
		stop()
		os.Exit(1)
	}
}

// execParseCommand executes the parse subcommand: it prints the syntax tree of
// a single source file.
func execParseCommand(result *olive.ArgParseResult, logLevel string) {
	initReporter(logLevel)

	path, _ := result.PrimaryArg()

	f, err := os.Open(path)
	if err != nil {
		report.ReportFatal("failed to open `%s`: %s", path, err)
	}
	defer f.Close()

	file, err := syntax.NewFileParser(&ast.IDSource{}).Parse(path, f)
	if err != nil {
		report.ReportCompileError(err)
		return
	}

	fmt.Printf("%# v\n", pretty.Formatter(file))
}

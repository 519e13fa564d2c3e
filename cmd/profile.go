package cmd

import (
	"ablac/common"
	"ablac/depm"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"golang.org/x/mod/semver"
)

// BuildProfile represents the configuration of a build.
type BuildProfile struct {
	// ProjectName is the name of the project being built.  For single file
	// builds, it is the name of the file without its extension.
	ProjectName string

	// RootDir is the directory relative paths are resolved against.
	RootDir string

	// Entries are the absolute paths of the units compilation starts from.
	Entries []string

	// OutputBase is the path of the build output.  If it has no extension, the
	// default extension of the output mode is appended.
	OutputBase string

	// OutputMode should be one of the enumerated output modes.
	OutputMode int

	// Parallel indicates that the entry units should be compiled in parallel.
	Parallel bool

	// LogLevel is the name of the log level selected by the profile.  It may
	// be empty.
	LogLevel string

	// Warnings are problems found while loading the profile.  They are
	// reported once the reporter has been initialized.
	Warnings []string
}

// Enumeration of output modes.
const (
	OutModeLLVM = iota // Textual LLVM IR.
	OutModeASM         // Native assembly produced by `llc`.
	OutModeObj         // An object file produced by `llc`.
)

// outModeNames maps the output mode names used by profiles and the command line
// to their enumerated modes.
var outModeNames = map[string]int{
	"llvm": OutModeLLVM,
	"asm":  OutModeASM,
	"obj":  OutModeObj,
}

// outModeExts are the default output extensions of each mode.
var outModeExts = [...]string{
	OutModeLLVM: ".ll",
	OutModeASM:  ".s",
	OutModeObj:  ".o",
}

// OutputPath returns the path the build output is written to.
func (bp *BuildProfile) OutputPath() string {
	if filepath.Ext(bp.OutputBase) == "" {
		return bp.OutputBase + outModeExts[bp.OutputMode]
	}

	return bp.OutputBase
}

// SetOutputMode sets the output mode by name.
func (bp *BuildProfile) SetOutputMode(name string) error {
	mode, ok := outModeNames[name]
	if !ok {
		return fmt.Errorf("invalid output mode: `%s`", name)
	}

	bp.OutputMode = mode
	return nil
}

// -----------------------------------------------------------------------------

// tomlProject represents an Abla project profile as it is encoded in TOML.
type tomlProject struct {
	Name     string         `toml:"name"`
	Version  string         `toml:"abla-version"`
	Entry    []string       `toml:"entry"`
	Output   string         `toml:"output"`
	Mode     string         `toml:"mode"`
	Parallel bool           `toml:"parallel"`
	LogLevel string         `toml:"log-level"`
	Profiles []*tomlProfile `toml:"profiles"`
}

// tomlProfile is a named set of overrides selected with `--profile`.
type tomlProfile struct {
	Name     string `toml:"name"`
	Output   string `toml:"output"`
	Mode     string `toml:"mode"`
	LogLevel string `toml:"log-level"`
	Parallel *bool  `toml:"parallel"`
}

// LoadProfile loads the build profile for a path.  If the path is a directory,
// the profile is read from its `abla.toml` and selected may name one of its
// profiles.  If the path is a source file, the file is built on its own with
// the default profile.
func LoadProfile(path, selected string) (*BuildProfile, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	finfo, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}

	if !finfo.IsDir() {
		if selected != "" {
			return nil, errors.New("profiles can only be selected when building a project directory")
		}

		name := strings.TrimSuffix(filepath.Base(absPath), filepath.Ext(absPath))
		return &BuildProfile{
			ProjectName: name,
			RootDir:     filepath.Dir(absPath),
			Entries:     []string{absPath},
			OutputBase:  filepath.Join(filepath.Dir(absPath), name),
			OutputMode:  OutModeLLVM,
		}, nil
	}

	profilePath := filepath.Join(absPath, common.AblaProfileFileName)
	buff, err := os.ReadFile(profilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	tp := &tomlProject{}
	if err := toml.Unmarshal(buff, tp); err != nil {
		return nil, fmt.Errorf("error parsing profile at `%s`: %w", profilePath, err)
	}

	return newProfile(absPath, tp, selected)
}

// newProfile validates a decoded project and converts it into a build profile.
func newProfile(root string, tp *tomlProject, selected string) (*BuildProfile, error) {
	if tp.Name == "" {
		return nil, fmt.Errorf("missing project name in profile at `%s`", root)
	} else if !depm.IsValidIdentifier(tp.Name) {
		return nil, fmt.Errorf("project name `%s` must be a valid identifier", tp.Name)
	}

	bp := &BuildProfile{
		ProjectName: tp.Name,
		RootDir:     root,
		Parallel:    tp.Parallel,
		LogLevel:    tp.LogLevel,
	}

	if warning, err := checkVersion(tp.Name, tp.Version); err != nil {
		return nil, err
	} else if warning != "" {
		bp.Warnings = append(bp.Warnings, warning)
	}

	// apply the selected profile's overrides
	output, mode := tp.Output, tp.Mode
	if selected != "" {
		prof := findProfile(tp.Profiles, selected)
		if prof == nil {
			return nil, fmt.Errorf("project `%s` has no profile `%s`", tp.Name, selected)
		}

		if prof.Output != "" {
			output = prof.Output
		}

		if prof.Mode != "" {
			mode = prof.Mode
		}

		if prof.LogLevel != "" {
			bp.LogLevel = prof.LogLevel
		}

		if prof.Parallel != nil {
			bp.Parallel = *prof.Parallel
		}
	}

	if output == "" {
		output = "out"
	}
	bp.OutputBase = resolvePath(root, output)

	if mode == "" {
		mode = "llvm"
	}

	if err := bp.SetOutputMode(mode); err != nil {
		return nil, fmt.Errorf("%w in project `%s`", err, tp.Name)
	}

	entries := tp.Entry
	if len(entries) == 0 {
		entries = []string{"main" + common.AblaFileExt}
	}

	for _, entry := range entries {
		bp.Entries = append(bp.Entries, resolvePath(root, entry))
	}

	return bp, nil
}

// findProfile returns the profile with the given name or nil.
func findProfile(profiles []*tomlProfile, name string) *tomlProfile {
	for _, prof := range profiles {
		if prof.Name == name {
			return prof
		}
	}

	return nil
}

// checkVersion checks the Abla version a project targets against the version
// of the compiler.  Incompatible versions produce a warning.
func checkVersion(project, version string) (string, error) {
	if version == "" {
		return fmt.Sprintf("project `%s` does not specify an abla-version", project), nil
	}

	target := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(target) {
		return "", fmt.Errorf("invalid abla-version `%s` in project `%s`", version, project)
	}

	current := "v" + common.AblaVersion
	if semver.Major(target) != semver.Major(current) {
		return fmt.Sprintf("project `%s` targets Abla %s which is incompatible with this compiler (%s)", project, target, current), nil
	} else if semver.Compare(target, current) > 0 {
		return fmt.Sprintf("project `%s` targets Abla %s which is newer than this compiler (%s)", project, target, current), nil
	}

	return "", nil
}

// resolvePath resolves a profile path relative to the project root.
func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(root, path)
}

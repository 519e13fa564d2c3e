package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/llir/llvm/ir"
)

// llcFileTypes are the `-filetype` arguments to `llc` for the native output
// modes.
var llcFileTypes = map[int]string{
	OutModeASM: "asm",
	OutModeObj: "obj",
}

// emitModule writes an LLVM module to the output path in the given output
// mode.  Native output is produced by running `llc` on the textual IR.
func emitModule(mod *ir.Module, outputPath string, mode int) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if mode == OutModeLLVM {
		return writeModule(mod, outputPath)
	}

	llPath := outputPath + ".ll"
	if err := writeModule(mod, llPath); err != nil {
		return err
	}

	// intermediate IR is removed even if `llc` fails
	defer os.Remove(llPath)

	return runLLC(llPath, outputPath, llcFileTypes[mode])
}

// writeModule writes the textual IR of a module to a file.
func writeModule(mod *ir.Module, path string) error {
	if err := os.WriteFile(path, []byte(mod.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write module to `%s`: %w", path, err)
	}

	return nil
}

// runLLC compiles textual IR into native output using `llc`.  `llc` must be in
// the PATH.
func runLLC(llPath, outputPath, fileType string) error {
	llc := exec.Command("llc", "-filetype="+fileType, "-o", outputPath, llPath)

	out, err := llc.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// `llc` ran but rejected the module
			return fmt.Errorf("llc error:\n%s", out)
		}

		return fmt.Errorf("failed to run llc: %w", err)
	}

	return nil
}

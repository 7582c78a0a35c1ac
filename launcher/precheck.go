package launcher

import (
	"fmt"
	"os"
	"path/filepath"
)

// CheckResult tags the outcome of the precondition pipeline.
type CheckResult int

const (
	CheckOk CheckResult = iota
	CheckMissingConfigFile
	CheckMissingExecutable
)

// resolve interprets a path relative to the submission directory, the
// same way the checks would see it after entering that directory.
func resolve(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// VerifyInputs runs the ordered precondition checks for a launch: the
// run-configuration file first, then the analysis executable. Both are
// resolved against the submission directory. The returned message is the
// user-facing diagnostic for the first failed check, empty on CheckOk.
func VerifyInputs(dir, configPath, executable string) (CheckResult, string) {
	if !isRegularFile(resolve(dir, configPath)) {
		return CheckMissingConfigFile, fmt.Sprintf("File %s not found!", configPath)
	}
	if !isRegularFile(resolve(dir, executable)) {
		return CheckMissingExecutable, fmt.Sprintf("Executable %s not found!", executable)
	}
	return CheckOk, ""
}

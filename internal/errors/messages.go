package errors

import "fmt"

// Common error messages for the decg CLI.
// These templates keep precondition failures consistent and actionable.

// HubRootNotFound creates an error for a working directory outside any hub.
func HubRootNotFound(marker string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("hub root not found: no %s in this directory or any parent", marker),
		"Run decg from inside the project hub checkout",
		fmt.Sprintf("Or set hub.marker in the decg config if the hub uses a different marker than %s", marker),
	)
}

// ComposeFileMissing creates an error for a missing dev compose file.
func ComposeFileMissing(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("docker compose file not found: %s", path),
		"Create the compose file at the expected location",
		"Or point dev.compose_file at it in .decg/config.yml",
	)
}

// ToolNotFound creates an error for an external CLI missing from PATH.
func ToolNotFound(tool string, install string) *CLIError {
	remediation := []string{fmt.Sprintf("Check that %s is in your PATH", tool)}
	if install != "" {
		remediation = append([]string{"Install: " + install}, remediation...)
	}
	return NewPrerequisiteError(fmt.Sprintf("%s command not found", tool), remediation...)
}

// ServiceNotFound creates an error for a service without a docs tree.
func ServiceNotFound(service, docsDir string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("service not found: %s", service),
		fmt.Sprintf("Check the service name against %s/", docsDir),
		fmt.Sprintf("Create it with: decg version new %s <version>", service),
	)
}

// VersionPathMissing creates an error when a docs version directory is absent.
func VersionPathMissing(paths ...string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("version path not found: %v", paths),
		"List available versions with: decg docs list <service>",
	)
}

// ProfileNotFound creates an error for an explicit --profile that does not exist.
func ProfileNotFound(path string, err error) *CLIError {
	return &CLIError{
		Category: Prerequisite,
		Message:  fmt.Sprintf("sparse profile not found: %s", path),
		Remediation: []string{
			"Paths given to --profile are relative to the hub root",
			"Omit --profile to use configs/sparse-profiles/<service>-<version>.yaml when present",
		},
		Err: err,
	}
}

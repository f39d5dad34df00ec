package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/deaddrop/internal/output"
	"github.com/mrz1836/deaddrop/internal/version"
)

const versionCheckTimeout = 15 * time.Second

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
var (
	buildInfo version.Build

	// versionCheck asks GitHub for the latest release.
	versionCheck bool

	// newVersionChecker is replaced in tests.
	newVersionChecker = func(current string) *version.Checker { return version.NewChecker(current) }
)

// BuildInfo aliases version.Build for callers setting it from main.
type BuildInfo = version.Build

// SetBuildInfo records the build metadata injected at link time.
func SetBuildInfo(info BuildInfo) {
	buildInfo = info
	rootCmd.Version = info.String()
}

// versionCmd prints the build version.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the deaddrop version",
	Example: `  deaddrop version
  deaddrop version --check`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

// VersionResponse is the JSON form of the version command.
type VersionResponse struct {
	version.Build
	Check *version.Status `json:"check,omitempty"`
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "check GitHub for a newer release")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	resp := VersionResponse{Build: buildInfo}

	if versionCheck {
		ctx, cancel := contextWithTimeout(cmd, versionCheckTimeout)
		defer cancel()

		status, err := newVersionChecker(buildInfo.Version).Check(ctx, buildInfo.Version)
		if err != nil {
			return err
		}
		resp.Check = &status
	}

	w := cmd.OutOrStdout()
	return renderResult(w, cc.Formatter.Format(), resp, func() error {
		outln(w, "deaddrop "+buildInfo.String())
		if resp.Check == nil {
			return nil
		}
		if resp.Check.UpdateAvailable {
			output.InfoTo(w, "A newer release is available: "+resp.Check.Latest+" "+resp.Check.URL)
		} else {
			output.SuccessTo(w, "You are running the latest release.")
		}
		return nil
	})
}

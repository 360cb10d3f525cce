package cmd

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

var (
	version = "dev" // overridden at build time via -ldflags
	commit  = ""
	date    = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Example: `  # Show version information
  tubehack version`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(versionString(version, commit, date, readBuildInfo()))
	},
}

func readBuildInfo() *debug.BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return info
}

// versionString prefers the -ldflags values and fills gaps from the module
// and VCS data embedded by go build / go install.
func versionString(v, rev, built string, info *debug.BuildInfo) string {
	if info != nil {
		if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && rev == "":
				rev = s.Value
			case s.Key == "vcs.time" && built == "":
				built = s.Value
			}
		}
	}

	out := "tubehack v" + strings.TrimPrefix(v, "v")
	if rev == "" {
		return out
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if built != "" {
		return fmt.Sprintf("%s (%s, built %s)", out, rev, built)
	}
	return fmt.Sprintf("%s (%s)", out, rev)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

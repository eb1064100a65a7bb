package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/prism-io/prism-shell/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s %s\n",
			styleBrand.Render("prismctl"),
			styleVersion.Render(buildinfo.Version),
			styleLabel.Render("("+buildinfo.Codename+")"),
		)
		field("OS/Arch", runtime.GOOS+"/"+runtime.GOARCH)
		field("Go", runtime.Version())
	},
}

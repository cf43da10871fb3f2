package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/adapters/driving/mcp"
)

// buildInfo is what "tabula version" reports.
type buildInfo struct {
	Version    string `json:"version"`
	MCPVersion string `json:"mcp_version"`
	Go         string `json:"go"`
	Platform   string `json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := buildInfo{
			Version:    version,
			MCPVersion: mcp.Version,
			Go:         runtime.Version(),
			Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		}
		return render(cmd, info, func(w io.Writer) {
			fmt.Fprintf(w, "tabula version %s\n", info.Version)
			fmt.Fprintf(w, "  mcp server %s, %s %s\n", info.MCPVersion, info.Go, info.Platform)
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

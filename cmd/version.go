package cmd

import (
	"fmt"

	"github.com/haierkeys/link-editor-service/internal/app"
	"github.com/haierkeys/link-editor-service/internal/linktype"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

func init() {
	var asJSON bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print out version info and exit. // 打印版本信息并退出。",
		RunE: func(cmd *cobra.Command, args []string) error {
			var types []string
			if registry, err := linktype.NewRegistry(); err == nil {
				for _, lt := range registry.LinkTypes() {
					types = append(types, lt.ID())
				}
			}

			out := cmd.OutOrStdout()
			if !asJSON {
				fmt.Fprintln(out, app.VersionString())
				for _, id := range types {
					fmt.Fprintf(out, "  link type %s\n", id)
				}
				return nil
			}

			b, err := sonic.ConfigStd.Marshal(map[string]any{
				"name":      app.Name,
				"version":   app.Version,
				"gitTag":    app.GitTag,
				"buildTime": app.BuildTime,
				"linkTypes": types,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		},
	}
	versionCmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(versionCmd)
}

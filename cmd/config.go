package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/moviesearch/internal/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	var showDefault bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the merged configuration as YAML",
		Long: "Print the configuration after merging the embedded defaults with the\n" +
			"config file. The resolved server URL (flag, $MOVIESEARCH_SERVER, config)\n" +
			"is reported in client.baseURL.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showDefault {
				_, err := cmd.OutOrStdout().Write(config.DefaultYAML())
				return err
			}
			cfg := root.cfg
			cfg.Client.BaseURL = root.run.ServerURL
			cfg.UI.NoColor = root.run.NoColor
			out, err := config.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&showDefault, "default", false, "print the embedded default config instead")
	return cmd
}

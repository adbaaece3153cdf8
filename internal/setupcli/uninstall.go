package setupcli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var uninstallCmd = &cobra.Command{
	Use:          "uninstall",
	Short:        "Remove the wrapper directory from PATH",
	Long:         `Remove every occurrence of the wrapper directory from the persistent PATH.`,
	RunE:         runUninstall,
	SilenceUsage: true,
}

func init() {
	uninstallCmd.Flags().StringP("dir", "d", "", "Directory to remove from PATH")
	uninstallCmd.Flags().StringP("scope", "s", "user", "PATH to modify: user, system, or all")
	_ = uninstallCmd.MarkFlagRequired("dir")
}

func runUninstall(cmd *cobra.Command, args []string) error {
	_ = viper.BindPFlag("dir", cmd.Flags().Lookup("dir"))
	_ = viper.BindPFlag("scope", cmd.Flags().Lookup("scope"))

	dir, err := filepath.Abs(viper.GetString("dir"))
	if err != nil {
		return fmt.Errorf("failed to resolve --dir: %w", err)
	}

	stores, err := storesForScope(viper.GetString("scope"))
	if err != nil {
		return err
	}

	for _, store := range stores {
		path, err := store.Load()
		if err != nil {
			return fmt.Errorf("failed to load the %s PATH: %w", store.Scope(), err)
		}

		if !path.Has(dir) {
			fmt.Fprintf(cmd.OutOrStdout(), "The %s PATH does not contain %s\n", store.Scope(), dir)
			continue
		}

		if err := store.Save(path.Remove(dir)); err != nil {
			return fmt.Errorf("failed to save the %s PATH: %w", store.Scope(), err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the %s PATH\n", dir, store.Scope())
	}

	return nil
}

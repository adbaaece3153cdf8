package setupcli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quicken-build/quickencl/internal/pathenv"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register the wrapper directory on PATH",
	Long: `Add the directory holding the wrapper binaries to the persistent PATH,
then run the bundled auto-configuration tool to locate MSVC and write
tools.json.`,
	RunE:         runInstall,
	SilenceUsage: true,
}

// newStore is swapped in tests.
var newStore = pathenv.NewStore

func init() {
	installCmd.Flags().StringP("dir", "d", "", "Directory holding quickencl.exe and tools.json")
	installCmd.Flags().StringP("scope", "s", "user", "PATH to modify: user, system, or all")
	installCmd.Flags().String("autoconf", "", "Auto-configuration program (default: QuickenAutoConf.exe in --dir)")
	installCmd.Flags().Bool("no-autoconf", false, "Skip MSVC auto-configuration")
	_ = installCmd.MarkFlagRequired("dir")
}

func runInstall(cmd *cobra.Command, args []string) error {
	_ = viper.BindPFlag("dir", cmd.Flags().Lookup("dir"))
	_ = viper.BindPFlag("scope", cmd.Flags().Lookup("scope"))
	_ = viper.BindPFlag("autoconf", cmd.Flags().Lookup("autoconf"))
	_ = viper.BindPFlag("no-autoconf", cmd.Flags().Lookup("no-autoconf"))

	dir, err := filepath.Abs(viper.GetString("dir"))
	if err != nil {
		return fmt.Errorf("failed to resolve --dir: %w", err)
	}

	stores, err := storesForScope(viper.GetString("scope"))
	if err != nil {
		return err
	}

	for _, store := range stores {
		if err := registerPath(cmd, store, dir); err != nil {
			return err
		}
	}

	if viper.GetBool("no-autoconf") {
		return nil
	}

	program := viper.GetString("autoconf")
	if program == "" {
		program = filepath.Join(dir, autoConfName)
	}

	if err := runAutoConf(program, dir); err != nil {
		return fmt.Errorf("auto-configuration failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Auto-configuration complete")

	return nil
}

// registerPath adds dir to one PATH store. The store is re-read right
// before the write so a concurrent edit is never clobbered with stale
// state.
func registerPath(cmd *cobra.Command, store pathenv.Store, dir string) error {
	path, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load the %s PATH: %w", store.Scope(), err)
	}

	if path.Has(dir) {
		fmt.Fprintf(cmd.OutOrStdout(), "The %s PATH already contains %s\n", store.Scope(), dir)
		return nil
	}

	if err := store.Save(path.Add(dir)); err != nil {
		return fmt.Errorf("failed to save the %s PATH: %w", store.Scope(), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s to the %s PATH\n", dir, store.Scope())

	return nil
}

// storesForScope opens the PATH stores selected by the --scope flag.
func storesForScope(scope string) ([]pathenv.Store, error) {
	var scopes []pathenv.Scope

	switch strings.ToLower(scope) {
	case "user":
		scopes = []pathenv.Scope{pathenv.UserScope}
	case "system":
		scopes = []pathenv.Scope{pathenv.SystemScope}
	case "all":
		scopes = []pathenv.Scope{pathenv.UserScope, pathenv.SystemScope}
	default:
		return nil, fmt.Errorf("unknown scope %q (use user, system, or all)", scope)
	}

	stores := make([]pathenv.Store, 0, len(scopes))

	for _, s := range scopes {
		store, err := newStore(s)
		if err != nil {
			return nil, fmt.Errorf("failed to open the %s PATH: %w", s, err)
		}

		stores = append(stores, store)
	}

	return stores, nil
}

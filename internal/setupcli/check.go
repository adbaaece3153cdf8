package setupcli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quicken-build/quickencl/internal/config"
)

var (
	checkOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	checkLabelStyle = lipgloss.NewStyle().Faint(true).Width(14)
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the tool configuration",
	Long: `Resolve and validate tools.json the same way the compiler wrapper does at
startup, then print the effective settings.`,
	RunE:         runCheck,
	SilenceUsage: true,
}

func init() {
	checkCmd.Flags().String("tools", "", "tools.json to validate (default: the resolved location)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	_ = viper.BindPFlag("tools", cmd.Flags().Lookup("tools"))

	var (
		cfg *config.Config
		err error
	)

	if path := viper.GetString("tools"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}

	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s %s\n", checkOKStyle.Render("ok"), cfg.Source)
	fmt.Fprintf(out, "%s %s\n", checkLabelStyle.Render("cl"), cfg.CompilerPath)
	fmt.Fprintf(out, "%s %s\n", checkLabelStyle.Render("vcvarsall"), cfg.VCVarsAll)
	fmt.Fprintf(out, "%s %s\n", checkLabelStyle.Render("msvc_arch"), cfg.Arch)
	fmt.Fprintf(out, "%s %s\n", checkLabelStyle.Render("backend"), cfg.Backend)

	return nil
}

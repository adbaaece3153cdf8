package setupcli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quicken-build/quickencl/internal/stats"
)

var (
	statsTitleStyle = lipgloss.NewStyle().Bold(true)
	statsLabelStyle = lipgloss.NewStyle().Faint(true).Width(14)
	statsHitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statsMissStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statsFailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var statsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show cache hit statistics",
	Long:         `Aggregate the wrapper's local bookkeeping into hit-rate totals.`,
	RunE:         runStats,
	SilenceUsage: true,
}

func init() {
	statsCmd.Flags().String("data-dir", "", "Stats directory (default: the per-user cache directory)")
	statsCmd.Flags().Bool("reset", false, "Clear all recorded statistics")
	statsCmd.Flags().IntP("recent", "n", 5, "Number of recent invocations to list")
}

func runStats(cmd *cobra.Command, args []string) error {
	_ = viper.BindPFlag("data-dir", cmd.Flags().Lookup("data-dir"))
	_ = viper.BindPFlag("reset", cmd.Flags().Lookup("reset"))
	_ = viper.BindPFlag("recent", cmd.Flags().Lookup("recent"))

	dir := viper.GetString("data-dir")
	if dir == "" {
		var err error

		dir, err = stats.DefaultDir()
		if err != nil {
			return err
		}
	}

	db, err := stats.Open(dir)
	if err != nil {
		return err
	}
	defer db.Close()

	if viper.GetBool("reset") {
		if err := db.Reset(); err != nil {
			return fmt.Errorf("failed to reset statistics: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Statistics cleared")

		return nil
	}

	totals, err := db.Totals()
	if err != nil {
		return err
	}

	size, err := db.Size()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, statsTitleStyle.Render("QuickenCL statistics"))
	fmt.Fprintf(out, "%s %d\n", statsLabelStyle.Render("invocations"), totals.Invocations)
	fmt.Fprintf(out, "%s %d\n", statsLabelStyle.Render("files"), totals.Files)
	fmt.Fprintf(out, "%s %s\n", statsLabelStyle.Render("hits"), statsHitStyle.Render(fmt.Sprint(totals.Hits)))
	fmt.Fprintf(out, "%s %s\n", statsLabelStyle.Render("misses"), statsMissStyle.Render(fmt.Sprint(totals.Misses)))
	fmt.Fprintf(out, "%s %s\n", statsLabelStyle.Render("failures"), statsFailStyle.Render(fmt.Sprint(totals.Failures)))
	fmt.Fprintf(out, "%s %.1f%%\n", statsLabelStyle.Render("hit rate"), totals.HitRate()*100)
	fmt.Fprintf(out, "%s %s\n", statsLabelStyle.Render("database"), humanize.IBytes(uint64(size)))

	recent, err := db.Recent(viper.GetInt("recent"))
	if err != nil {
		return err
	}

	if len(recent) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, statsTitleStyle.Render("Recent invocations"))

	for _, rec := range recent {
		fmt.Fprintf(out, "%s %d files, %d hits, %d misses, %d failures in %s\n",
			statsLabelStyle.Render(humanize.Time(rec.Time)),
			rec.Files, rec.Hits, rec.Misses, rec.Failures,
			time.Duration(rec.ElapsedMS)*time.Millisecond)
	}

	return nil
}

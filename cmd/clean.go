package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CityLensHQ/citylens-cli/internal/cleaning"
	"github.com/CityLensHQ/citylens-cli/internal/utils"
)

var (
	cleanInput  string
	cleanOutput string
	cleanReport string
	cleanJSON   bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Run the cleaning pipeline over the raw dataset",
	Long: `Clean loads the raw CSV, removes duplicate cities, fills missing values,
clips out-of-range metrics, derives coordinates for rows without any, and
writes the cleaned dataset atomically. The run aborts on the first failure
and leaves the output untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		input := cleanInput
		if input == "" {
			input = c.RawCSVPath
		}
		output := cleanOutput
		if output == "" {
			output = c.CleanedCSVPath
		}

		opt := cleaning.Options{Progress: os.Stdout}
		if cleanJSON {
			// Keep stdout machine-readable.
			opt.Progress = os.Stderr
		}
		report, err := cleaning.Run(input, output, opt)
		if err != nil {
			return err
		}

		if cleanReport != "" {
			if err := report.Save(cleanReport); err != nil {
				return fmt.Errorf("save report: %w", err)
			}
			fmt.Fprintf(opt.Progress, "✓ Report saved to %s\n", cleanReport)
		}

		if cleanJSON {
			b, err := utils.PrettyJSON(report)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		fmt.Println()
		fmt.Print(report.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVar(&cleanInput, "input", "", "raw dataset path (default from config)")
	cleanCmd.Flags().StringVar(&cleanOutput, "output", "", "cleaned dataset path (default from config)")
	cleanCmd.Flags().StringVar(&cleanReport, "report", "", "also save the run report as JSON to this path")
	cleanCmd.Flags().BoolVar(&cleanJSON, "json", false, "print the report as JSON instead of text")
}

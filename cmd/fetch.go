package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/CityLensHQ/citylens-cli/internal/fetch"
)

var (
	fetchCacheDir string
	fetchMaxAge   int
	fetchForce    bool
	fetchClear    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [source]",
	Short: "Stage a dataset file into the local cache",
	Long: `Fetch copies the source dataset into the cache directory and prints the
cached path. While the cached copy is fresh, repeated fetches reuse it.
With --clear the cache is emptied instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		dir := fetchCacheDir
		if dir == "" {
			dir = c.CacheDir
		}
		hours := fetchMaxAge
		if hours <= 0 {
			hours = c.CacheMaxAgeHours
		}
		r := &fetch.Retriever{
			Dir:      dir,
			MaxAge:   time.Duration(hours) * time.Hour,
			Progress: os.Stdout,
		}

		if fetchClear {
			if len(args) > 0 {
				return fmt.Errorf("--clear takes no source argument")
			}
			return r.Clear()
		}
		if len(args) == 0 {
			args = append(args, c.RawCSVPath)
		}

		cached, err := r.Fetch(args[0], fetchForce)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Data available: %s\n", cached)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVar(&fetchCacheDir, "cache-dir", "", "cache directory (default from config)")
	fetchCmd.Flags().IntVar(&fetchMaxAge, "max-age", 0, "cache freshness window in hours (default from config)")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "recopy even when the cached file is fresh")
	fetchCmd.Flags().BoolVar(&fetchClear, "clear", false, "empty the cache directory instead of fetching")
}

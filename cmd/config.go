package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/CityLensHQ/citylens-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set CityLens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		fmt.Printf("raw_csv_path: %s\n", c.RawCSVPath)
		fmt.Printf("cleaned_csv_path: %s\n", c.CleanedCSVPath)
		fmt.Printf("cache_dir: %s\n", c.CacheDir)
		fmt.Printf("cache_max_age_hours: %d\n", c.CacheMaxAgeHours)
		fmt.Printf("server_host: %s\n", c.ServerHost)
		fmt.Printf("server_port: %d\n", c.ServerPort)
		fmt.Printf("default_top_n: %d\n", c.DefaultTopN)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		switch key {
		case "raw_csv_path":
			c.RawCSVPath = val
		case "cleaned_csv_path":
			c.CleanedCSVPath = val
		case "cache_dir":
			c.CacheDir = val
		case "cache_max_age_hours":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for cache_max_age_hours: %v", val)
			}
			c.CacheMaxAgeHours = i
		case "server_host":
			c.ServerHost = val
		case "server_port":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 || i > 65535 {
				return fmt.Errorf("invalid port for server_port: %v", val)
			}
			c.ServerPort = i
		case "default_top_n":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for default_top_n: %v", val)
			}
			c.DefaultTopN = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

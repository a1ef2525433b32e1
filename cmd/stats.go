package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CityLensHQ/citylens-cli/internal/dataset"
	"github.com/CityLensHQ/citylens-cli/internal/stats"
	"github.com/CityLensHQ/citylens-cli/internal/utils"
)

var (
	statsData         string
	statsJSON         bool
	statsCountries    []string
	statsCities       []string
	statsMinHappiness float64
	statsMaxHappiness float64
	statsMinIncome    float64
	statsMaxIncome    float64
	statsTopN         int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Query statistics over the cleaned dataset",
	Long: `Stats answers analytical queries against the cleaned dataset: overviews,
per-country aggregates, rankings, correlations, map projections and derived
insights. Filter flags narrow the rows before any query runs.`,
}

// statsEngine loads the dataset and applies any filter flags, returning the
// engine every stats subcommand queries.
func statsEngine() (*stats.Engine, error) {
	c, err := ensureConfig()
	if err != nil {
		return nil, err
	}
	data := statsData
	if data == "" {
		data = c.CleanedCSVPath
	}
	eng, err := stats.Load(data)
	if err != nil {
		return nil, err
	}

	f := stats.Filters{Countries: statsCountries, Cities: statsCities}
	pf := statsCmd.PersistentFlags()
	if pf.Changed("min-happiness") {
		f.MinHappiness = &statsMinHappiness
	}
	if pf.Changed("max-happiness") {
		f.MaxHappiness = &statsMaxHappiness
	}
	if pf.Changed("min-income") {
		f.MinIncome = &statsMinIncome
	}
	if pf.Changed("max-income") {
		f.MaxIncome = &statsMaxIncome
	}
	if len(f.Countries) == 0 && len(f.Cities) == 0 &&
		f.MinHappiness == nil && f.MaxHappiness == nil &&
		f.MinIncome == nil && f.MaxIncome == nil {
		return eng, nil
	}
	return eng.FilteredView(f)
}

// emit prints v as pretty JSON under --json, otherwise the rendered text.
func emit(v any, render func() string) error {
	if statsJSON {
		b, err := utils.PrettyJSON(v)
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}
	fmt.Print(render())
	return nil
}

func f2(v float64) string { return fmt.Sprintf("%.2f", v) }

func describeRow(name string, d dataset.Describe) []string {
	return []string{
		name,
		fmt.Sprintf("%.0f", d.Count),
		f2(d.Mean), f2(d.Std), f2(d.Min), f2(d.P25), f2(d.P50), f2(d.P75), f2(d.Max),
	}
}

var statsOverviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Scalar summary of the whole dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := statsEngine()
		if err != nil {
			return err
		}
		o, err := eng.Overview()
		if err != nil {
			return err
		}
		return emit(o, func() string {
			var b strings.Builder
			b.WriteString("[OVERVIEW]\n")
			b.WriteString(fmt.Sprintf("Cities: %d | Countries: %d\n", o.TotalCities, len(o.Countries)))
			b.WriteString(fmt.Sprintf("Avg population density: %s\n", f2(o.AvgPopulationDensity)))
			b.WriteString(fmt.Sprintf("Avg income: %s (range %s - %s)\n", f2(o.AvgIncome), f2(o.IncomeRange.Min), f2(o.IncomeRange.Max)))
			b.WriteString(fmt.Sprintf("Avg happiness: %s (range %s - %s)\n", f2(o.AvgHappiness), f2(o.HappinessRange.Min), f2(o.HappinessRange.Max)))
			b.WriteString(fmt.Sprintf("Avg air quality index: %s\n", f2(o.AvgAirQuality)))
			b.WriteString(fmt.Sprintf("Avg internet penetration: %s\n", f2(o.AvgInternetPenetration)))
			return b.String()
		})
	},
}

var statsByCountryCmd = &cobra.Command{
	Use:   "by-country",
	Short: "Per-country aggregates",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := statsEngine()
		if err != nil {
			return err
		}
		br, err := eng.CitiesByCountry()
		if err != nil {
			return err
		}
		return emit(br, func() string {
			rows := make([][]string, len(br.Countries))
			for i, c := range br.Countries {
				rows[i] = []string{
					c,
					fmt.Sprintf("%d", br.CityCount[i]),
					f2(br.AvgPopulationDensity[i]),
					f2(br.AvgIncome[i]),
					f2(br.AvgHappiness[i]),
				}
			}
			return utils.RenderTable([]string{"COUNTRY", "CITIES", "AVG DENSITY", "AVG INCOME", "AVG HAPPINESS"}, rows)
		})
	},
}

var statsTopCmd = &cobra.Command{
	Use:   "top <metric>",
	Short: "Rank cities by one metric",
	Long: `Top ranks cities by the given metric, best first. Valid metrics:
` + strings.Join(stats.TopMetrics, ", ") + `.
air_quality_index ranks ascending (lower pollution is better).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := statsEngine()
		if err != nil {
			return err
		}
		topN := statsTopN
		if topN <= 0 && cfg != nil {
			topN = cfg.DefaultTopN
		}
		top, err := eng.TopCities(args[0], topN)
		if err != nil {
			return err
		}
		return emit(top, func() string {
			rows := make([][]string, len(top.Cities))
			for i := range top.Cities {
				rows[i] = []string{
					fmt.Sprintf("%d", i+1),
					top.Cities[i],
					top.Countries[i],
					f2(top.MetricValues[i]),
					f2(top.AvgIncome[i]),
					f2(top.HappinessScore[i]),
				}
			}
			header := []string{"#", "CITY", "COUNTRY", strings.ToUpper(args[0]), "AVG INCOME", "HAPPINESS"}
			return utils.RenderTable(header, rows)
		})
	},
}

var statsIncomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Per-country income statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := statsEngine()
		if err != nil {
			return err
		}
		ia, err := eng.IncomeAnalysis()
		if err != nil {
			return err
		}
		return emit(ia, func() string {
			by := ia.ByCountry
			rows := make([][]string, len(by.Countries))
			for i, c := range by.Countries {
				rows[i] = []string{
					c, f2(by.Mean[i]), f2(by.Median[i]), f2(by.Std[i]), f2(by.Min[i]), f2(by.Max[i]),
				}
			}
			return utils.RenderTable([]string{"COUNTRY", "MEAN", "MEDIAN", "STD", "MIN", "MAX"}, rows)
		})
	},
}

var statsGeoCmd = &cobra.Command{
	Use:   "geo",
	Short: "Map projection of every city",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := statsEngine()
		if err != nil {
			return err
		}
		g, err := eng.GeographicData()
		if err != nil {
			return err
		}
		return emit(g, func() string {
			rows := make([][]string, len(g.Cities))
			for i := range g.Cities {
				rows[i] = []string{
					g.Cities[i],
					g.Countries[i],
					fmt.Sprintf("%.4f", g.Latitude[i]),
					fmt.Sprintf("%.4f", g.Longitude[i]),
					g.CellTokens[i],
				}
			}
			return utils.RenderTable([]string{"CITY", "COUNTRY", "LATITUDE", "LONGITUDE", "S2 CELL"}, rows)
		})
	},
}

var statsCorrelationsCmd = &cobra.Command{
	Use:   "correlations",
	Short: "Pearson correlation matrix over the metric columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := statsEngine()
		if err != nil {
			return err
		}
		c, err := eng.Correlations()
		if err != nil {
			return err
		}
		return emit(c, func() string {
			header := append([]string{"METRIC"}, c.Columns...)
			rows := make([][]string, len(c.Columns))
			for i, name := range c.Columns {
				row := make([]string, 0, len(c.Columns)+1)
				row = append(row, name)
				for j := range c.Columns {
					row = append(row, f2(c.CorrelationMatrix[i][j]))
				}
				rows[i] = row
			}
			return utils.RenderTable(header, rows)
		})
	},
}

var statsQualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Distribution summaries of the livability metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := statsEngine()
		if err != nil {
			return err
		}
		q, err := eng.QualityOfLife()
		if err != nil {
			return err
		}
		return emit(q, func() string {
			rows := [][]string{
				describeRow("air quality", q.AirQualityDistribution),
				describeRow("public transport", q.TransportQuality),
				describeRow("green spaces", q.GreenSpaces),
				describeRow("internet access", q.InternetAccess),
			}
			header := []string{"FACTOR", "COUNT", "MEAN", "STD", "MIN", "P25", "MEDIAN", "P75", "MAX"}
			return utils.RenderTable(header, rows)
		})
	},
}

var statsHappinessCmd = &cobra.Command{
	Use:   "happiness",
	Short: "Per-country happiness statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := statsEngine()
		if err != nil {
			return err
		}
		ha, err := eng.HappinessAnalysis()
		if err != nil {
			return err
		}
		return emit(ha, func() string {
			by := ha.ByCountry
			rows := make([][]string, len(by.Countries))
			for i, c := range by.Countries {
				rows[i] = []string{
					c,
					f2(by.AvgHappiness[i]),
					f2(by.MinHappiness[i]),
					f2(by.MaxHappiness[i]),
					f2(by.StdHappiness[i]),
					fmt.Sprintf("%d", by.CityCount[i]),
				}
			}
			return utils.RenderTable([]string{"COUNTRY", "AVG", "MIN", "MAX", "STD", "CITIES"}, rows)
		})
	},
}

var statsCompareCmd = &cobra.Command{
	Use:   "compare [city ...]",
	Short: "Compare the full metric rows of named cities",
	Long: `Compare prints every metric for the named cities. Without arguments the
first ten cities of the dataset are compared. Unknown names are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := statsEngine()
		if err != nil {
			return err
		}
		var requested []string
		if len(args) > 0 {
			requested = args
		}
		rows, err := eng.CityComparison(requested)
		if err != nil {
			return err
		}
		return emit(rows, func() string {
			out := make([][]string, len(rows))
			for i, r := range rows {
				out[i] = []string{
					r.CityName,
					r.Country,
					f2(r.PopulationDensity),
					f2(r.AvgIncome),
					f2(r.InternetPenetration),
					f2(r.AvgRent),
					f2(r.AirQualityIndex),
					f2(r.PublicTransportScore),
					f2(r.HappinessScore),
					f2(r.GreenSpaceRatio),
				}
			}
			header := []string{"CITY", "COUNTRY", "DENSITY", "INCOME", "INTERNET", "RENT", "AIR", "TRANSPORT", "HAPPINESS", "GREEN"}
			return utils.RenderTable(header, out)
		})
	},
}

var statsInsightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Cross-metric correlations and superlative countries",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := statsEngine()
		if err != nil {
			return err
		}
		in, err := eng.Insights()
		if err != nil {
			return err
		}
		return emit(in, func() string {
			var b strings.Builder
			b.WriteString("[CORRELATIONS]\n")
			b.WriteString(fmt.Sprintf("happiness vs income: %s\n", f2(in.HappinessIncomeCorrelation)))
			b.WriteString(fmt.Sprintf("happiness vs air quality: %s\n", f2(in.HappinessAirQualityCorrelation)))
			b.WriteString(fmt.Sprintf("happiness vs green space: %s\n", f2(in.HappinessGreenSpaceCorrelation)))
			b.WriteString("\n[SUPERLATIVES]\n")
			b.WriteString(fmt.Sprintf("Happiest country: %s\n", in.HappiestCountry))
			b.WriteString(fmt.Sprintf("Highest income: %s\n", in.HighestIncomeCountry))
			b.WriteString(fmt.Sprintf("Best public transport: %s\n", in.BestTransportCountry))
			b.WriteString(fmt.Sprintf("Greenest: %s\n", in.GreenestCountry))
			b.WriteString(fmt.Sprintf("Most connected: %s\n", in.MostConnectedCountry))
			return b.String()
		})
	},
}

var statsFiltersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the filterable countries and cities",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := statsEngine()
		if err != nil {
			return err
		}
		opts, err := eng.FilterOptions()
		if err != nil {
			return err
		}
		return emit(opts, func() string {
			var b strings.Builder
			b.WriteString(fmt.Sprintf("Countries (%d): %s\n", len(opts.Countries), strings.Join(opts.Countries, ", ")))
			b.WriteString(fmt.Sprintf("Cities (%d): %s\n", len(opts.Cities), strings.Join(opts.Cities, ", ")))
			return b.String()
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsOverviewCmd, statsByCountryCmd, statsTopCmd,
		statsIncomeCmd, statsGeoCmd, statsCorrelationsCmd, statsQualityCmd,
		statsHappinessCmd, statsCompareCmd, statsInsightsCmd, statsFiltersCmd)

	pf := statsCmd.PersistentFlags()
	pf.StringVar(&statsData, "data", "", "cleaned dataset path (default from config)")
	pf.BoolVar(&statsJSON, "json", false, "print results as JSON")
	pf.StringSliceVar(&statsCountries, "country", nil, "only include these countries (repeatable)")
	pf.StringSliceVar(&statsCities, "city", nil, "only include these cities (repeatable)")
	pf.Float64Var(&statsMinHappiness, "min-happiness", 0, "minimum happiness score")
	pf.Float64Var(&statsMaxHappiness, "max-happiness", 0, "maximum happiness score")
	pf.Float64Var(&statsMinIncome, "min-income", 0, "minimum average income")
	pf.Float64Var(&statsMaxIncome, "max-income", 0, "maximum average income")

	statsTopCmd.Flags().IntVar(&statsTopN, "top-n", 0, "how many cities to rank (default from config)")
}

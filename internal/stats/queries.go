package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/CityLensHQ/citylens-cli/internal/dataset"
	"github.com/CityLensHQ/citylens-cli/internal/geocode"
)

// Range bounds one metric across the dataset.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Overview is the scalar summary behind the dashboard landing panel.
// Countries keep first-occurrence order.
type Overview struct {
	TotalCities            int      `json:"total_cities"`
	Countries              []string `json:"countries"`
	AvgPopulationDensity   float64  `json:"avg_population_density"`
	AvgIncome              float64  `json:"avg_income"`
	AvgHappiness           float64  `json:"avg_happiness"`
	IncomeRange            Range    `json:"income_range"`
	HappinessRange         Range    `json:"happiness_range"`
	AvgAirQuality          float64  `json:"avg_air_quality"`
	AvgInternetPenetration float64  `json:"avg_internet_penetration"`
}

func (e *Engine) Overview() (*Overview, error) {
	countries, err := e.d.Distinct(dataset.ColCountry)
	if err != nil {
		return nil, err
	}
	density, err := e.d.NonNull(dataset.ColPopulationDensity)
	if err != nil {
		return nil, err
	}
	income, err := e.d.NonNull(dataset.ColAvgIncome)
	if err != nil {
		return nil, err
	}
	happiness, err := e.d.NonNull(dataset.ColHappinessScore)
	if err != nil {
		return nil, err
	}
	air, err := e.d.NonNull(dataset.ColAirQualityIndex)
	if err != nil {
		return nil, err
	}
	internet, err := e.d.NonNull(dataset.ColInternetPenetration)
	if err != nil {
		return nil, err
	}

	o := &Overview{
		TotalCities:            e.d.Rows(),
		Countries:              countries,
		AvgPopulationDensity:   dataset.Mean(density),
		AvgIncome:              dataset.Mean(income),
		AvgHappiness:           dataset.Mean(happiness),
		AvgAirQuality:          dataset.Mean(air),
		AvgInternetPenetration: dataset.Mean(internet),
	}
	o.IncomeRange.Min, o.IncomeRange.Max = dataset.MinMax(income)
	o.HappinessRange.Min, o.HappinessRange.Max = dataset.MinMax(happiness)
	return o, nil
}

// CountryBreakdown lists per-country aggregates as parallel arrays, ordered
// alphabetically by country.
type CountryBreakdown struct {
	Countries            []string  `json:"countries"`
	CityCount            []int     `json:"city_count"`
	AvgPopulationDensity []float64 `json:"avg_population_density"`
	AvgIncome            []float64 `json:"avg_income"`
	AvgHappiness         []float64 `json:"avg_happiness"`
}

func (e *Engine) CitiesByCountry() (*CountryBreakdown, error) {
	names, groups, err := e.countryGroups()
	if err != nil {
		return nil, err
	}
	_, cityNull, err := e.d.TextValues(dataset.ColCityName)
	if err != nil {
		return nil, err
	}
	density, densityNull, err := e.d.NumericValues(dataset.ColPopulationDensity)
	if err != nil {
		return nil, err
	}
	income, incomeNull, err := e.d.NumericValues(dataset.ColAvgIncome)
	if err != nil {
		return nil, err
	}
	happiness, happinessNull, err := e.d.NumericValues(dataset.ColHappinessScore)
	if err != nil {
		return nil, err
	}

	br := &CountryBreakdown{
		Countries:            names,
		CityCount:            make([]int, 0, len(names)),
		AvgPopulationDensity: make([]float64, 0, len(names)),
		AvgIncome:            make([]float64, 0, len(names)),
		AvgHappiness:         make([]float64, 0, len(names)),
	}
	for _, c := range names {
		rows := groups[c]
		count := 0
		for _, r := range rows {
			if !cityNull[r] {
				count++
			}
		}
		br.CityCount = append(br.CityCount, count)
		br.AvgPopulationDensity = append(br.AvgPopulationDensity, dataset.Mean(groupValues(density, densityNull, rows)))
		br.AvgIncome = append(br.AvgIncome, dataset.Mean(groupValues(income, incomeNull, rows)))
		br.AvgHappiness = append(br.AvgHappiness, dataset.Mean(groupValues(happiness, happinessNull, rows)))
	}
	return br, nil
}

// TopMetrics lists the metrics accepted by TopCities, as surfaced to clients.
var TopMetrics = []string{
	dataset.ColHappinessScore,
	dataset.ColAvgIncome,
	dataset.ColInternetPenetration,
	dataset.ColPublicTransportScore,
	dataset.ColGreenSpaceRatio,
	dataset.ColAirQualityIndex,
}

// TopCities holds one ranking as parallel arrays in rank order.
type TopCities struct {
	Cities         []string  `json:"cities"`
	Countries      []string  `json:"countries"`
	MetricValues   []float64 `json:"metric_values"`
	AvgIncome      []float64 `json:"avg_income"`
	HappinessScore []float64 `json:"happiness_score"`
}

// TopCities ranks rows by metric, largest first, except air_quality_index
// where lower pollution ranks higher. Ties keep the earlier row first. A
// topN of zero or less falls back to DefaultTopN.
func (e *Engine) TopCities(metric string, topN int) (*TopCities, error) {
	valid := false
	for _, m := range TopMetrics {
		if m == metric {
			valid = true
			break
		}
	}
	if !valid {
		return nil, &InputError{Msg: fmt.Sprintf("invalid metric %q, valid options: %s", metric, strings.Join(TopMetrics, ", "))}
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	vals, null, err := e.d.NumericValues(metric)
	if err != nil {
		return nil, err
	}
	cities, _, err := e.d.TextValues(dataset.ColCityName)
	if err != nil {
		return nil, err
	}
	countries, _, err := e.d.TextValues(dataset.ColCountry)
	if err != nil {
		return nil, err
	}
	income, incomeNull, err := e.d.NumericValues(dataset.ColAvgIncome)
	if err != nil {
		return nil, err
	}
	happiness, happinessNull, err := e.d.NumericValues(dataset.ColHappinessScore)
	if err != nil {
		return nil, err
	}

	idx := make([]int, 0, e.d.Rows())
	for i := 0; i < e.d.Rows(); i++ {
		if null[i] {
			continue
		}
		idx = append(idx, i)
	}
	ascending := metric == dataset.ColAirQualityIndex
	sort.SliceStable(idx, func(a, b int) bool {
		if ascending {
			return vals[idx[a]] < vals[idx[b]]
		}
		return vals[idx[a]] > vals[idx[b]]
	})
	if len(idx) > topN {
		idx = idx[:topN]
	}

	top := &TopCities{
		Cities:         make([]string, 0, len(idx)),
		Countries:      make([]string, 0, len(idx)),
		MetricValues:   make([]float64, 0, len(idx)),
		AvgIncome:      make([]float64, 0, len(idx)),
		HappinessScore: make([]float64, 0, len(idx)),
	}
	for _, r := range idx {
		top.Cities = append(top.Cities, cities[r])
		top.Countries = append(top.Countries, countries[r])
		top.MetricValues = append(top.MetricValues, vals[r])
		top.AvgIncome = append(top.AvgIncome, valueAt(income, incomeNull, r))
		top.HappinessScore = append(top.HappinessScore, valueAt(happiness, happinessNull, r))
	}
	return top, nil
}

// IncomeByCountry carries per-country income statistics as parallel arrays.
type IncomeByCountry struct {
	Countries []string  `json:"countries"`
	Mean      []float64 `json:"mean"`
	Median    []float64 `json:"median"`
	Std       []float64 `json:"std"`
	Min       []float64 `json:"min"`
	Max       []float64 `json:"max"`
}

// IncomeAnalysis wraps the per-country income breakdown.
type IncomeAnalysis struct {
	ByCountry IncomeByCountry `json:"by_country"`
}

func (e *Engine) IncomeAnalysis() (*IncomeAnalysis, error) {
	names, groups, err := e.countryGroups()
	if err != nil {
		return nil, err
	}
	income, null, err := e.d.NumericValues(dataset.ColAvgIncome)
	if err != nil {
		return nil, err
	}

	by := IncomeByCountry{
		Countries: names,
		Mean:      make([]float64, 0, len(names)),
		Median:    make([]float64, 0, len(names)),
		Std:       make([]float64, 0, len(names)),
		Min:       make([]float64, 0, len(names)),
		Max:       make([]float64, 0, len(names)),
	}
	for _, c := range names {
		vals := groupValues(income, null, groups[c])
		lo, hi := dataset.MinMax(vals)
		by.Mean = append(by.Mean, dataset.Mean(vals))
		by.Median = append(by.Median, dataset.Median(vals))
		by.Std = append(by.Std, dataset.SampleStd(vals))
		by.Min = append(by.Min, lo)
		by.Max = append(by.Max, hi)
	}
	return &IncomeAnalysis{ByCountry: by}, nil
}

// GeographicData projects every row for map rendering: identity, metrics,
// coordinates and the covering S2 cell token, as parallel arrays.
type GeographicData struct {
	Cities               []string  `json:"cities"`
	Countries            []string  `json:"countries"`
	PopulationDensity    []float64 `json:"population_density"`
	AvgIncome            []float64 `json:"avg_income"`
	InternetPenetration  []float64 `json:"internet_penetration"`
	AvgRent              []float64 `json:"avg_rent"`
	HappinessScore       []float64 `json:"happiness_score"`
	AirQualityIndex      []float64 `json:"air_quality_index"`
	PublicTransportScore []float64 `json:"public_transport_score"`
	GreenSpaceRatio      []float64 `json:"green_space_ratio"`
	Latitude             []float64 `json:"latitude"`
	Longitude            []float64 `json:"longitude"`
	CellTokens           []string  `json:"cell_tokens"`
}

func (e *Engine) GeographicData() (*GeographicData, error) {
	cities, _, err := e.d.TextValues(dataset.ColCityName)
	if err != nil {
		return nil, err
	}
	countries, _, err := e.d.TextValues(dataset.ColCountry)
	if err != nil {
		return nil, err
	}

	g := &GeographicData{Cities: cities, Countries: countries}
	binds := []struct {
		name string
		dst  *[]float64
	}{
		{dataset.ColPopulationDensity, &g.PopulationDensity},
		{dataset.ColAvgIncome, &g.AvgIncome},
		{dataset.ColInternetPenetration, &g.InternetPenetration},
		{dataset.ColAvgRent, &g.AvgRent},
		{dataset.ColHappinessScore, &g.HappinessScore},
		{dataset.ColAirQualityIndex, &g.AirQualityIndex},
		{dataset.ColPublicTransportScore, &g.PublicTransportScore},
		{dataset.ColGreenSpaceRatio, &g.GreenSpaceRatio},
		{dataset.ColLatitude, &g.Latitude},
		{dataset.ColLongitude, &g.Longitude},
	}
	for _, bind := range binds {
		vals, err := e.projectNumeric(bind.name)
		if err != nil {
			return nil, err
		}
		*bind.dst = vals
	}

	g.CellTokens = make([]string, len(g.Latitude))
	for i := range g.CellTokens {
		g.CellTokens[i] = geocode.CellToken(g.Latitude[i], g.Longitude[i])
	}
	return g, nil
}

// projectNumeric returns a column's values aligned to rows, with missing
// cells rendered as 0.
func (e *Engine) projectNumeric(name string) ([]float64, error) {
	vals, null, err := e.d.NumericValues(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vals))
	for i := range vals {
		out[i] = valueAt(vals, null, i)
	}
	return out, nil
}

// Correlations is the Pearson matrix over the eight metric columns, aligned
// to Columns in both dimensions.
type Correlations struct {
	Columns           []string    `json:"columns"`
	CorrelationMatrix [][]float64 `json:"correlation_matrix"`
}

func (e *Engine) Correlations() (*Correlations, error) {
	cols := dataset.MetricColumns
	vals := make([][]float64, len(cols))
	nulls := make([][]bool, len(cols))
	for i, name := range cols {
		v, n, err := e.d.NumericValues(name)
		if err != nil {
			return nil, err
		}
		vals[i], nulls[i] = v, n
	}

	matrix := make([][]float64, len(cols))
	for i := range matrix {
		matrix[i] = make([]float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pearson(vals[i], vals[j], nulls[i], nulls[j])
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}
	return &Correlations{Columns: cols, CorrelationMatrix: matrix}, nil
}

// QualityOfLife bundles distribution summaries of the four livability
// metrics.
type QualityOfLife struct {
	AirQualityDistribution dataset.Describe `json:"air_quality_distribution"`
	TransportQuality       dataset.Describe `json:"transport_quality"`
	GreenSpaces            dataset.Describe `json:"green_spaces"`
	InternetAccess         dataset.Describe `json:"internet_access"`
}

func (e *Engine) QualityOfLife() (*QualityOfLife, error) {
	air, err := e.d.NonNull(dataset.ColAirQualityIndex)
	if err != nil {
		return nil, err
	}
	transport, err := e.d.NonNull(dataset.ColPublicTransportScore)
	if err != nil {
		return nil, err
	}
	green, err := e.d.NonNull(dataset.ColGreenSpaceRatio)
	if err != nil {
		return nil, err
	}
	internet, err := e.d.NonNull(dataset.ColInternetPenetration)
	if err != nil {
		return nil, err
	}
	return &QualityOfLife{
		AirQualityDistribution: dataset.DescribeValues(air),
		TransportQuality:       dataset.DescribeValues(transport),
		GreenSpaces:            dataset.DescribeValues(green),
		InternetAccess:         dataset.DescribeValues(internet),
	}, nil
}

// HappinessByCountry carries per-country happiness statistics as parallel
// arrays.
type HappinessByCountry struct {
	Countries    []string  `json:"countries"`
	AvgHappiness []float64 `json:"avg_happiness"`
	MinHappiness []float64 `json:"min_happiness"`
	MaxHappiness []float64 `json:"max_happiness"`
	StdHappiness []float64 `json:"std_happiness"`
	CityCount    []int     `json:"city_count"`
}

// HappinessAnalysis wraps the per-country happiness breakdown.
type HappinessAnalysis struct {
	ByCountry HappinessByCountry `json:"by_country"`
}

func (e *Engine) HappinessAnalysis() (*HappinessAnalysis, error) {
	names, groups, err := e.countryGroups()
	if err != nil {
		return nil, err
	}
	happiness, null, err := e.d.NumericValues(dataset.ColHappinessScore)
	if err != nil {
		return nil, err
	}
	_, cityNull, err := e.d.TextValues(dataset.ColCityName)
	if err != nil {
		return nil, err
	}

	by := HappinessByCountry{
		Countries:    names,
		AvgHappiness: make([]float64, 0, len(names)),
		MinHappiness: make([]float64, 0, len(names)),
		MaxHappiness: make([]float64, 0, len(names)),
		StdHappiness: make([]float64, 0, len(names)),
		CityCount:    make([]int, 0, len(names)),
	}
	for _, c := range names {
		rows := groups[c]
		vals := groupValues(happiness, null, rows)
		lo, hi := dataset.MinMax(vals)
		by.AvgHappiness = append(by.AvgHappiness, dataset.Mean(vals))
		by.MinHappiness = append(by.MinHappiness, lo)
		by.MaxHappiness = append(by.MaxHappiness, hi)
		by.StdHappiness = append(by.StdHappiness, dataset.SampleStd(vals))
		count := 0
		for _, r := range rows {
			if !cityNull[r] {
				count++
			}
		}
		by.CityCount = append(by.CityCount, count)
	}
	return &HappinessAnalysis{ByCountry: by}, nil
}

// CityMetrics is one city's full metric row in a comparison.
type CityMetrics struct {
	CityName             string  `json:"city_name"`
	Country              string  `json:"country"`
	PopulationDensity    float64 `json:"population_density"`
	AvgIncome            float64 `json:"avg_income"`
	InternetPenetration  float64 `json:"internet_penetration"`
	AvgRent              float64 `json:"avg_rent"`
	AirQualityIndex      float64 `json:"air_quality_index"`
	PublicTransportScore float64 `json:"public_transport_score"`
	HappinessScore       float64 `json:"happiness_score"`
	GreenSpaceRatio      float64 `json:"green_space_ratio"`
}

// CityComparison returns the metric rows of the requested cities in request
// order. A nil request compares the first DefaultTopN cities of the dataset;
// names with no matching row are skipped silently.
func (e *Engine) CityComparison(requested []string) ([]CityMetrics, error) {
	cities, cityNull, err := e.d.TextValues(dataset.ColCityName)
	if err != nil {
		return nil, err
	}
	countries, countryNull, err := e.d.TextValues(dataset.ColCountry)
	if err != nil {
		return nil, err
	}
	metrics := make(map[string][]float64, len(dataset.MetricColumns))
	for _, name := range dataset.MetricColumns {
		dense, err := e.projectNumeric(name)
		if err != nil {
			return nil, err
		}
		metrics[name] = dense
	}

	if requested == nil {
		limit := DefaultTopN
		if e.d.Rows() < limit {
			limit = e.d.Rows()
		}
		for i := 0; i < limit; i++ {
			if cityNull[i] {
				continue
			}
			requested = append(requested, cities[i])
		}
	}

	out := []CityMetrics{}
	for _, want := range requested {
		row := -1
		for i := range cities {
			if !cityNull[i] && cities[i] == want {
				row = i
				break
			}
		}
		if row < 0 {
			continue
		}
		country := ""
		if !countryNull[row] {
			country = countries[row]
		}
		out = append(out, CityMetrics{
			CityName:             want,
			Country:              country,
			PopulationDensity:    metrics[dataset.ColPopulationDensity][row],
			AvgIncome:            metrics[dataset.ColAvgIncome][row],
			InternetPenetration:  metrics[dataset.ColInternetPenetration][row],
			AvgRent:              metrics[dataset.ColAvgRent][row],
			AirQualityIndex:      metrics[dataset.ColAirQualityIndex][row],
			PublicTransportScore: metrics[dataset.ColPublicTransportScore][row],
			HappinessScore:       metrics[dataset.ColHappinessScore][row],
			GreenSpaceRatio:      metrics[dataset.ColGreenSpaceRatio][row],
		})
	}
	return out, nil
}

// Insights carries cross-metric correlations and superlative countries.
// Superlatives compare per-country means; ties go to the alphabetically
// first country.
type Insights struct {
	HappinessIncomeCorrelation     float64 `json:"happiness_income_correlation"`
	HappinessAirQualityCorrelation float64 `json:"happiness_air_quality_correlation"`
	HappinessGreenSpaceCorrelation float64 `json:"happiness_green_space_correlation"`
	HappiestCountry                string  `json:"happiest_country"`
	HighestIncomeCountry           string  `json:"highest_income_country"`
	BestTransportCountry           string  `json:"best_transport_country"`
	GreenestCountry                string  `json:"greenest_country"`
	MostConnectedCountry           string  `json:"most_connected_country"`
}

func (e *Engine) Insights() (*Insights, error) {
	happiness, happinessNull, err := e.d.NumericValues(dataset.ColHappinessScore)
	if err != nil {
		return nil, err
	}
	income, incomeNull, err := e.d.NumericValues(dataset.ColAvgIncome)
	if err != nil {
		return nil, err
	}
	air, airNull, err := e.d.NumericValues(dataset.ColAirQualityIndex)
	if err != nil {
		return nil, err
	}
	green, greenNull, err := e.d.NumericValues(dataset.ColGreenSpaceRatio)
	if err != nil {
		return nil, err
	}
	transport, transportNull, err := e.d.NumericValues(dataset.ColPublicTransportScore)
	if err != nil {
		return nil, err
	}
	internet, internetNull, err := e.d.NumericValues(dataset.ColInternetPenetration)
	if err != nil {
		return nil, err
	}

	names, groups, err := e.countryGroups()
	if err != nil {
		return nil, err
	}
	argmax := func(vals []float64, null []bool) string {
		best := ""
		bestMean := math.Inf(-1)
		for _, c := range names {
			m := dataset.Mean(groupValues(vals, null, groups[c]))
			if m > bestMean {
				bestMean = m
				best = c
			}
		}
		return best
	}

	return &Insights{
		HappinessIncomeCorrelation:     pearson(happiness, income, happinessNull, incomeNull),
		HappinessAirQualityCorrelation: pearson(happiness, air, happinessNull, airNull),
		HappinessGreenSpaceCorrelation: pearson(happiness, green, happinessNull, greenNull),
		HappiestCountry:                argmax(happiness, happinessNull),
		HighestIncomeCountry:           argmax(income, incomeNull),
		BestTransportCountry:           argmax(transport, transportNull),
		GreenestCountry:                argmax(green, greenNull),
		MostConnectedCountry:           argmax(internet, internetNull),
	}, nil
}

// FilterOptions lists the distinct values available for building filters,
// both sorted ascending.
type FilterOptions struct {
	Countries []string `json:"countries"`
	Cities    []string `json:"cities"`
}

func (e *Engine) FilterOptions() (*FilterOptions, error) {
	countries, err := e.d.Distinct(dataset.ColCountry)
	if err != nil {
		return nil, err
	}
	cities, err := e.d.Distinct(dataset.ColCityName)
	if err != nil {
		return nil, err
	}
	sort.Strings(countries)
	sort.Strings(cities)
	return &FilterOptions{Countries: countries, Cities: cities}, nil
}

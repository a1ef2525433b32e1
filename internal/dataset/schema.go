package dataset

// Canonical column names of the city lifestyle schema.
const (
	ColCityName             = "city_name"
	ColCountry              = "country"
	ColPopulationDensity    = "population_density"
	ColAvgIncome            = "avg_income"
	ColInternetPenetration  = "internet_penetration"
	ColAvgRent              = "avg_rent"
	ColAirQualityIndex      = "air_quality_index"
	ColPublicTransportScore = "public_transport_score"
	ColHappinessScore       = "happiness_score"
	ColGreenSpaceRatio      = "green_space_ratio"
	ColLatitude             = "latitude"
	ColLongitude            = "longitude"
)

// NumericColumns lists every column carrying numeric semantics, in canonical
// order. Type normalization coerces exactly these when present.
var NumericColumns = []string{
	ColPopulationDensity,
	ColAvgIncome,
	ColInternetPenetration,
	ColAvgRent,
	ColAirQualityIndex,
	ColPublicTransportScore,
	ColHappinessScore,
	ColGreenSpaceRatio,
	ColLatitude,
	ColLongitude,
}

// MetricColumns lists the eight range-constrained metrics used by
// aggregations and the correlation matrix, in canonical order.
var MetricColumns = []string{
	ColPopulationDensity,
	ColAvgIncome,
	ColInternetPenetration,
	ColAvgRent,
	ColAirQualityIndex,
	ColPublicTransportScore,
	ColHappinessScore,
	ColGreenSpaceRatio,
}

// Range is an inclusive validity interval for a numeric column.
type Range struct {
	Min float64
	Max float64
}

// ValidRanges maps each constrained column to its inclusive range. Values
// outside a range are clipped to the nearest bound, never rejected.
var ValidRanges = map[string]Range{
	ColPopulationDensity:    {0, 100000},
	ColAvgIncome:            {0, 200000},
	ColInternetPenetration:  {0, 100},
	ColAvgRent:              {0, 50000},
	ColAirQualityIndex:      {0, 500},
	ColPublicTransportScore: {0, 100},
	ColHappinessScore:       {0, 10},
	ColGreenSpaceRatio:      {0, 100},
}

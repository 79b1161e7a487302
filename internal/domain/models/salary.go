package models

import (
	"encoding/json"
	"strings"
)

type SalaryRange struct {
	Min      *float64
	Max      *float64
	Currency string
	Period   SalaryPeriod
}

type rawSalary struct {
	MinValue float64 `json:"minValue"`
	MaxValue float64 `json:"maxValue"`
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
	UnitText string  `json:"unitText"`
}

// ParseSalaryJSON defensively parses the salary blobs some providers emit:
// either a JSON object or a JSON string containing such an object. Returns
// nil on any parse failure instead of failing the whole item.
func ParseSalaryJSON(raw json.RawMessage) *SalaryRange {
	if len(raw) == 0 {
		return nil
	}

	data := raw
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if asString == "" {
			return nil
		}
		data = []byte(asString)
	}

	var salary rawSalary
	if err := json.Unmarshal(data, &salary); err != nil {
		return nil
	}

	result := &SalaryRange{
		Currency: salary.Currency,
		Period:   periodFromUnit(salary.UnitText),
	}

	if salary.MinValue > 0 {
		result.Min = &salary.MinValue
	}
	if salary.MaxValue > 0 {
		result.Max = &salary.MaxValue
	}
	if result.Min == nil && result.Max == nil {
		if salary.Value <= 0 {
			return nil
		}
		result.Min = &salary.Value
		result.Max = &salary.Value
	}

	return result
}

func periodFromUnit(unit string) SalaryPeriod {
	switch strings.ToUpper(unit) {
	case "HOUR", "HOURLY":
		return SalaryHourly
	case "MONTH", "MONTHLY":
		return SalaryMonthly
	case "YEAR", "YEARLY", "ANNUM":
		return SalaryYearly
	default:
		return ""
	}
}

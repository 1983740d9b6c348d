package block

import (
	"fmt"
	"strings"
)

// UnitGroup classifies portion units.
type UnitGroup string

const (
	UnitVolume  UnitGroup = "volume"
	UnitWeight  UnitGroup = "weight"
	UnitCount   UnitGroup = "count"
	UnitServing UnitGroup = "serving"
)

// PortionUnits is the closed portion unit taxonomy, grouped for pickers.
var PortionUnits = map[UnitGroup][]string{
	UnitVolume:  {"ml", "l", "cup", "tbsp", "tsp", "fl_oz"},
	UnitWeight:  {"g", "kg", "oz", "lb"},
	UnitCount:   {"piece", "tablet", "capsule", "drop", "scoop"},
	UnitServing: {"serving", "can", "pouch", "bowl"},
}

// PortionUnitGroup returns the group a portion unit belongs to.
func PortionUnitGroup(unit string) (UnitGroup, bool) {
	for group, units := range PortionUnits {
		for _, u := range units {
			if u == unit {
				return group, true
			}
		}
	}
	return "", false
}

// MeasurementUnits lists the units accepted per measurement type.
var MeasurementUnits = map[string][]string{
	"weight":      {"kg", "lb", "g", "oz"},
	"height":      {"cm", "in", "m"},
	"length":      {"cm", "in", "m"},
	"volume":      {"ml", "l"},
	"temperature": {"C", "F"},
}

// Currencies is the currency allow-list for cost blocks.
var Currencies = []string{"USD", "EUR", "GBP", "JPY", "CNY", "CAD", "AUD", "CHF", "KRW", "INR"}

// CostCategories lists the optional cost categories.
var CostCategories = []string{"food", "medical", "supplies", "grooming", "boarding", "insurance", "toys", "other"}

const poundKg = 0.45359237

// WeightToKg converts a weight in kg, lb, g or oz to kilograms.
func WeightToKg(value float64, unit string) (float64, error) {
	if value <= 0 {
		return 0, fmt.Errorf("weight must be > 0")
	}
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "kg":
		return value, nil
	case "lb", "lbs":
		return value * poundKg, nil
	case "g":
		return value / 1000, nil
	case "oz":
		return value * poundKg / 16, nil
	default:
		return 0, fmt.Errorf("invalid weight unit %q", unit)
	}
}

// WeightFromKg converts kilograms into the given unit.
func WeightFromKg(kg float64, unit string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "kg":
		return kg, nil
	case "lb", "lbs":
		return kg / poundKg, nil
	case "g":
		return kg * 1000, nil
	case "oz":
		return kg / poundKg * 16, nil
	default:
		return 0, fmt.Errorf("invalid weight unit %q", unit)
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

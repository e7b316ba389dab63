package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	cmPerInch = 2.54
	kgPerLb   = 0.453592
)

type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

func FeetInchesToCm(feet, inches int) int {
	return int(math.Round(float64(feet*12+inches) * cmPerInch))
}

func LbsToKg(lbs float64) int {
	return int(math.Round(lbs * kgPerLb))
}

type HeightInput struct {
	Units  UnitSystem
	Cm     string
	Feet   string
	Inches string
}

func ParseHeightCm(in HeightInput) (int, error) {
	units, err := resolveUnits(in.Units)
	if err != nil {
		return 0, err
	}
	if units == UnitsMetric {
		cm, err := parseWholeNumber("height", in.Cm)
		if err != nil {
			return 0, err
		}
		if cm <= 0 {
			return 0, fmt.Errorf("%w: height must be > 0", ErrInvalidInput)
		}
		return cm, nil
	}
	feet, err := parseWholeNumber("height feet", in.Feet)
	if err != nil {
		return 0, err
	}
	inches, err := parseWholeNumber("height inches", in.Inches)
	if err != nil {
		return 0, err
	}
	if feet < 0 || inches < 0 || feet*12+inches <= 0 {
		return 0, fmt.Errorf("%w: height must be > 0", ErrInvalidInput)
	}
	return FeetInchesToCm(feet, inches), nil
}

func ParseWeightKg(units UnitSystem, raw string) (int, error) {
	u, err := resolveUnits(units)
	if err != nil {
		return 0, err
	}
	v, err := parseWholeNumber("weight", raw)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: weight must be > 0", ErrInvalidInput)
	}
	if u == UnitsImperial {
		return LbsToKg(float64(v)), nil
	}
	return v, nil
}

func WeightFromKg(weightKg float64, units UnitSystem) (float64, error) {
	u, err := resolveUnits(units)
	if err != nil {
		return 0, err
	}
	if u == UnitsImperial {
		return weightKg / kgPerLb, nil
	}
	return weightKg, nil
}

func resolveUnits(u UnitSystem) (UnitSystem, error) {
	switch UnitSystem(strings.ToLower(strings.TrimSpace(string(u)))) {
	case "", UnitsMetric:
		return UnitsMetric, nil
	case UnitsImperial:
		return UnitsImperial, nil
	default:
		return "", fmt.Errorf("%w: unit system %q (use metric or imperial)", ErrInvalidInput, u)
	}
}

func parseWholeNumber(name, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrInvalidInput, name, raw)
	}
	return v, nil
}

// WeightToKg converts a measured weight without rounding, for weigh-ins.
func WeightToKg(value float64, units UnitSystem) (float64, error) {
	u, err := resolveUnits(units)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0, fmt.Errorf("%w: weight must be > 0", ErrInvalidInput)
	}
	if u == UnitsImperial {
		return value * kgPerLb, nil
	}
	return value, nil
}

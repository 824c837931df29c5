package alerts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ecolab/ecolab/pkg/quality"
	"github.com/ecolab/ecolab/pkg/types"
)

// Sample is one graded reading as seen by the rule engine. Only the
// measurement and result matching Lab are read.
type Sample struct {
	SessionID string
	Lab       types.Lab

	Water     types.Measurement
	Result    quality.Result
	Air       types.AirMeasurement
	AirResult quality.AirResult
}

// condition is a parsed "field op value" expression.
type condition struct {
	field, op, rhs string
}

// parseCondition splits and checks a rule condition.
//
// Supported expressions (field operator value):
//
//	overall_score < 60
//	ph < 6.5
//	turbidity >= 5
//	tds > 1000
//	dissolved_oxygen < 4
//	temperature > 30
//	co2 > 1000
//	pm25 > 35
//	pm10 > 150
//	humidity > 80
//	classification == very_poor
//	aqi == hazardous
//	potable == false
func parseCondition(cond string) (condition, error) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return condition{}, fmt.Errorf("alerts: condition %q: want \"field op value\"", cond)
	}
	c := condition{field: parts[0], op: parts[1], rhs: parts[2]}

	switch c.field {
	case "classification":
		var cl quality.Classification
		if err := cl.UnmarshalText([]byte(c.rhs)); err != nil {
			return condition{}, err
		}
		return c, c.enumOp()
	case "aqi":
		var l quality.AQILevel
		if err := l.UnmarshalText([]byte(c.rhs)); err != nil {
			return condition{}, err
		}
		return c, c.enumOp()
	case "potable":
		if _, err := strconv.ParseBool(c.rhs); err != nil {
			return condition{}, fmt.Errorf("alerts: condition %q: %w", cond, err)
		}
		return c, c.enumOp()
	}

	if _, ok := numericFields[c.field]; !ok {
		return condition{}, fmt.Errorf("alerts: condition %q: unknown field %q", cond, c.field)
	}
	if _, err := strconv.ParseFloat(c.rhs, 64); err != nil {
		return condition{}, fmt.Errorf("alerts: condition %q: %w", cond, err)
	}
	switch c.op {
	case ">", ">=", "<", "<=", "==", "!=":
		return c, nil
	}
	return condition{}, fmt.Errorf("alerts: condition %q: unknown operator %q", cond, c.op)
}

func (c condition) enumOp() error {
	if c.op != "==" && c.op != "!=" {
		return fmt.Errorf("alerts: %s supports only == and !=, got %q", c.field, c.op)
	}
	return nil
}

// evalCondition evaluates a rule condition string against a Sample.
// Returns (fires bool, triggering value float64). A condition that cannot be
// parsed, or names a field the sample's lab does not measure, never fires.
func evalCondition(cond string, s Sample) (bool, float64) {
	c, err := parseCondition(cond)
	if err != nil {
		return false, 0
	}

	switch c.field {
	case "classification":
		if s.Lab != types.LabWater {
			return false, 0
		}
		var want quality.Classification
		_ = want.UnmarshalText([]byte(c.rhs))
		return (s.Result.Classification == want) == (c.op == "=="), float64(s.Result.OverallScore)

	case "aqi":
		if s.Lab != types.LabAir {
			return false, 0
		}
		var want quality.AQILevel
		_ = want.UnmarshalText([]byte(c.rhs))
		return (s.AirResult.Level == want) == (c.op == "=="), 0

	case "potable":
		if s.Lab != types.LabWater {
			return false, 0
		}
		want, _ := strconv.ParseBool(c.rhs)
		return (s.Result.Potable == want) == (c.op == "=="), 0
	}

	v, ok := numericField(c.field, s)
	if !ok {
		return false, 0
	}
	threshold, _ := strconv.ParseFloat(c.rhs, 64)
	return compareFloat(v, c.op, threshold), v
}

// numericFields lists the numeric condition fields and the lab that measures
// them. An empty lab means both.
var numericFields = map[string]types.Lab{
	"overall_score":    types.LabWater,
	"ph":               types.LabWater,
	"turbidity":        types.LabWater,
	"tds":              types.LabWater,
	"dissolved_oxygen": types.LabWater,
	"temperature":      "",
	"co2":              types.LabAir,
	"pm25":             types.LabAir,
	"pm10":             types.LabAir,
	"humidity":         types.LabAir,
}

// numericField maps a field name to its value in the sample.
func numericField(field string, s Sample) (float64, bool) {
	lab, known := numericFields[field]
	if !known || (lab != "" && lab != s.Lab) {
		return 0, false
	}
	switch field {
	case "overall_score":
		return float64(s.Result.OverallScore), true
	case "ph":
		return s.Water.PH, true
	case "turbidity":
		return s.Water.Turbidity, true
	case "tds":
		return s.Water.TDS, true
	case "dissolved_oxygen":
		return s.Water.DissolvedOxygen, true
	case "temperature":
		if s.Lab == types.LabAir {
			return s.Air.Temperature, true
		}
		return s.Water.Temperature, true
	case "co2":
		return s.Air.CO2, true
	case "pm25":
		return s.Air.PM25, true
	case "pm10":
		return s.Air.PM10, true
	case "humidity":
		return s.Air.Humidity, true
	}
	return 0, false
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	case "!=":
		return v != threshold
	default:
		return false
	}
}

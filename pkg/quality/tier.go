package quality

import "fmt"

// Tier is the qualitative bucket a single reading falls into.
// Lower values are better.
type Tier int

const (
	TierOptimal Tier = iota
	TierAcceptable
	TierMarginal
	TierPoor
)

var tierNames = [...]string{"Optimal", "Acceptable", "Marginal", "Poor"}

func (t Tier) String() string {
	if t < TierOptimal || t > TierPoor {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name produced by MarshalText.
func (t *Tier) UnmarshalText(b []byte) error {
	for i, name := range tierNames {
		if name == string(b) {
			*t = Tier(i)
			return nil
		}
	}
	return fmt.Errorf("quality: unknown tier %q", b)
}

// Classification is the overall grade of a water sample.
type Classification int

const (
	ClassExcellent Classification = iota
	ClassGood
	ClassFair
	ClassPoor
	ClassVeryPoor
)

var (
	classNames = [...]string{"Excellent", "Good", "Fair", "Poor", "Very Poor"}
	classKeys  = [...]string{"excellent", "good", "fair", "poor", "very_poor"}
)

func (c Classification) String() string {
	if c < ClassExcellent || c > ClassVeryPoor {
		return fmt.Sprintf("Classification(%d)", int(c))
	}
	return classNames[c]
}

// Key returns the snake_case identifier used in alert conditions and metric labels.
func (c Classification) Key() string {
	if c < ClassExcellent || c > ClassVeryPoor {
		return "unknown"
	}
	return classKeys[c]
}

// MarshalText encodes the classification by display name.
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts either the display name or the key.
func (c *Classification) UnmarshalText(b []byte) error {
	for i := range classNames {
		if classNames[i] == string(b) || classKeys[i] == string(b) {
			*c = Classification(i)
			return nil
		}
	}
	return fmt.Errorf("quality: unknown classification %q", b)
}

// AQILevel is the overall grade of an air sample.
type AQILevel int

const (
	AQIGood AQILevel = iota
	AQIModerate
	AQIUnhealthy
	AQIHazardous
)

var (
	aqiNames = [...]string{"Good", "Moderate", "Unhealthy", "Hazardous"}
	aqiKeys  = [...]string{"good", "moderate", "unhealthy", "hazardous"}
)

func (l AQILevel) String() string {
	if l < AQIGood || l > AQIHazardous {
		return fmt.Sprintf("AQILevel(%d)", int(l))
	}
	return aqiNames[l]
}

// Key returns the lowercase identifier used in alert conditions and metric labels.
func (l AQILevel) Key() string {
	if l < AQIGood || l > AQIHazardous {
		return "unknown"
	}
	return aqiKeys[l]
}

// MarshalText encodes the level by display name.
func (l AQILevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts either the display name or the key.
func (l *AQILevel) UnmarshalText(b []byte) error {
	for i := range aqiNames {
		if aqiNames[i] == string(b) || aqiKeys[i] == string(b) {
			*l = AQILevel(i)
			return nil
		}
	}
	return fmt.Errorf("quality: unknown aqi level %q", b)
}

// aqiFromTier maps the shared tier scale onto air levels one to one.
func aqiFromTier(t Tier) AQILevel {
	return AQILevel(t)
}

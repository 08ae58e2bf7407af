package accuracy

import "fmt"

// Band is a verbal confidence category for an accuracy probability.
type Band int

// Bands ordered from least to most confident.
const (
	ExceptionallyUnlikely Band = iota
	VeryUnlikely
	Unlikely
	AboutAsLikelyAsNot
	Likely
	VeryLikely
	VirtuallyCertain
)

// Classify maps a probability in [0, 1] to its band.
func Classify(p float64) Band {
	switch {
	case p > 0.99:
		return VirtuallyCertain
	case p > 0.90:
		return VeryLikely
	case p > 0.66:
		return Likely
	case p >= 0.33:
		return AboutAsLikelyAsNot
	case p < 0.01:
		return ExceptionallyUnlikely
	case p < 0.10:
		return VeryUnlikely
	default:
		return Unlikely
	}
}

var bandNames = [...]string{
	ExceptionallyUnlikely: "exceptionally unlikely",
	VeryUnlikely:          "very unlikely",
	Unlikely:              "unlikely",
	AboutAsLikelyAsNot:    "about as likely as not",
	Likely:                "likely",
	VeryLikely:            "very likely",
	VirtuallyCertain:      "virtually certain",
}

// shade colors per band, as RGB.
var bandColors = [...][3]uint8{
	ExceptionallyUnlikely: {245, 0, 0},
	VeryUnlikely:          {248, 151, 54},
	Unlikely:              {249, 211, 2},
	AboutAsLikelyAsNot:    {250, 255, 4},
	Likely:                {196, 240, 0},
	VeryLikely:            {101, 255, 0},
	VirtuallyCertain:      {35, 177, 80},
}

func (b Band) valid() bool {
	return b >= ExceptionallyUnlikely && b <= VirtuallyCertain
}

func (b Band) String() string {
	if !b.valid() {
		return fmt.Sprintf("Band(%d)", int(b))
	}
	return bandNames[b]
}

// Color returns the band's shade as a "#rrggbb" string.
func (b Band) Color() string {
	if !b.valid() {
		return "#ffffff"
	}
	c := bandColors[b]
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// MarshalText encodes the band by name.
func (b Band) MarshalText() ([]byte, error) {
	if !b.valid() {
		return nil, fmt.Errorf("invalid band %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText decodes a band name.
func (b *Band) UnmarshalText(text []byte) error {
	for i, name := range bandNames {
		if name == string(text) {
			*b = Band(i)
			return nil
		}
	}
	return fmt.Errorf("unknown band %q", text)
}

// LegendEntry describes one band for display.
type LegendEntry struct {
	Band  Band   `json:"band"`
	Label string `json:"label"`
	// Example is a probability that falls in Band.
	Example float64 `json:"example"`
}

// Legend lists every band, most confident first.
func Legend() []LegendEntry {
	return []LegendEntry{
		{VirtuallyCertain, "Virtually certain: > 99%", 1.0},
		{VeryLikely, "Very likely: > 90%", 0.95},
		{Likely, "Likely: > 66%", 0.75},
		{AboutAsLikelyAsNot, "About as likely as not: 33% - 66%", 0.5},
		{Unlikely, "Unlikely: < 33%", 0.25},
		{VeryUnlikely, "Very unlikely: < 10%", 0.05},
		{ExceptionallyUnlikely, "Exceptionally unlikely: < 1%", 0.001},
	}
}

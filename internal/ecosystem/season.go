package ecosystem

import "fmt"

// Season is one of the four quarterly steps of a simulated year.
type Season uint8

// Season constants, in stepping order.
const (
	SeasonSpring Season = iota
	SeasonSummer
	SeasonAutumn
	SeasonWinter
)

// Seasons lists the seasons in the fixed order each year is stepped.
var Seasons = [...]Season{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter}

// String returns the lowercase season label used in recorded history.
func (s Season) String() string {
	switch s {
	case SeasonSpring:
		return "spring"
	case SeasonSummer:
		return "summer"
	case SeasonAutumn:
		return "autumn"
	case SeasonWinter:
		return "winter"
	default:
		return "unknown"
	}
}

// ParseSeason converts a season label back into a Season.
func ParseSeason(label string) (Season, error) {
	for _, s := range Seasons {
		if s.String() == label {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown season %q", label)
}

// MarshalText encodes the season as its label.
func (s Season) MarshalText() ([]byte, error) {
	if s > SeasonWinter {
		return nil, fmt.Errorf("invalid season %d", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a season label.
func (s *Season) UnmarshalText(text []byte) error {
	parsed, err := ParseSeason(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

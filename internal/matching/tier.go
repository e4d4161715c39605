package matching

import (
	"fmt"
	"strings"
)

// Tier is a confidence level for a query/candidate pair.
type Tier int

const (
	None Tier = iota
	Low
	Medium
	High
	Exact
)

var tierNames = [...]string{"none", "low", "medium", "high", "exact"}

func (t Tier) String() string {
	if t < None || t > Exact {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// AtLeast reports whether t meets the minimum tier.
func (t Tier) AtLeast(minimum Tier) bool {
	return t >= minimum
}

// ParseTier reads a tier name case-insensitively.
func ParseTier(value string) (Tier, error) {
	name := strings.ToLower(strings.TrimSpace(value))
	for i, candidate := range tierNames {
		if candidate == name {
			return Tier(i), nil
		}
	}
	return None, fmt.Errorf("unknown confidence tier %q (want exact, high, medium, low or none)", value)
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Set and Type let a *Tier serve as a command-line flag value.
func (t *Tier) Set(value string) error {
	return t.UnmarshalText([]byte(value))
}

func (t *Tier) Type() string { return "tier" }

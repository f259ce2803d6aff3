// Package address turns a single joined US mailing address into structured,
// upper-cased fields suitable for printing on a card.
//
// The engine treats normalization as an external collaborator: it hands a
// joined string to a Normalizer and stores whatever comes back. USNormalizer is
// the built-in implementation; it is a token-based parser, not a full postal
// standardizer, and reports ErrUnparseable when it cannot find a street number,
// a state or a ZIP code.
package address

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnparseable is returned when an address string cannot be split into parts.
var ErrUnparseable = errors.New("unparseable address")

// Address is a normalized mailing address.
type Address struct {
	Line1      string `json:"address_line_1"`
	Line2      string `json:"address_line_2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// CityStatePostalCode renders the last line of a mailing label.
func (a Address) CityStatePostalCode() string {
	return fmt.Sprintf("%s %s %s", a.City, a.State, a.PostalCode)
}

func (a Address) String() string {
	if a.Line2 == "" {
		return a.Line1 + "\n" + a.CityStatePostalCode()
	}
	return a.Line1 + "\n" + a.Line2 + "\n" + a.CityStatePostalCode()
}

// Normalizer converts a joined address string into an Address.
type Normalizer interface {
	Normalize(joined string) (*Address, error)
}

// NormalizerFunc adapts a plain function to the Normalizer interface.
type NormalizerFunc func(joined string) (*Address, error)

// Normalize calls f(joined).
func (f NormalizerFunc) Normalize(joined string) (*Address, error) {
	return f(joined)
}

var postalRegex = regexp.MustCompile(`^(\d{5})(?:-?(\d{4}))?$`)

var streetSuffixes = map[string]string{
	"ST": "ST", "STREET": "ST",
	"AVE": "AVE", "AV": "AVE", "AVENUE": "AVE",
	"RD": "RD", "ROAD": "RD",
	"BLVD": "BLVD", "BOULEVARD": "BLVD",
	"DR": "DR", "DRIVE": "DR",
	"LN": "LN", "LANE": "LN",
	"CT": "CT", "COURT": "CT",
	"PL": "PL", "PLACE": "PL",
	"WAY": "WAY",
	"TER": "TER", "TERRACE": "TER",
	"CIR": "CIR", "CIRCLE": "CIR",
	"PKWY": "PKWY", "PARKWAY": "PKWY",
	"HWY": "HWY", "HIGHWAY": "HWY",
	"TRL": "TRL", "TRAIL": "TRL",
	"SQ": "SQ", "SQUARE": "SQ",
	"LOOP": "LOOP",
}

var directionals = map[string]string{
	"N": "N", "NORTH": "N",
	"S": "S", "SOUTH": "S",
	"E": "E", "EAST": "E",
	"W": "W", "WEST": "W",
	"NE": "NE", "NORTHEAST": "NE",
	"NW": "NW", "NORTHWEST": "NW",
	"SE": "SE", "SOUTHEAST": "SE",
	"SW": "SW", "SOUTHWEST": "SW",
}

var unitDesignators = map[string]string{
	"APT": "APT", "APARTMENT": "APT",
	"STE": "STE", "SUITE": "STE",
	"UNIT": "UNIT",
	"BLDG": "BLDG", "BUILDING": "BLDG",
	"FL": "FL", "FLOOR": "FL",
	"RM": "RM", "ROOM": "RM",
	"#": "#",
}

// USNormalizer parses joined US addresses of the form
// "<number> <street> [unit] <city> <state> <zip>".
type USNormalizer struct{}

// NewUSNormalizer returns the default US address normalizer.
func NewUSNormalizer() USNormalizer {
	return USNormalizer{}
}

// Normalize implements Normalizer.
func (USNormalizer) Normalize(joined string) (*Address, error) {
	tokens := tokenize(joined)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnparseable)
	}

	postal, tokens, ok := takePostal(tokens)
	if !ok {
		return nil, fmt.Errorf("%w: no ZIP code in %q", ErrUnparseable, joined)
	}

	state, tokens, ok := takeState(tokens)
	if !ok {
		return nil, fmt.Errorf("%w: no state in %q", ErrUnparseable, joined)
	}

	if len(tokens) < 2 || !startsWithDigit(tokens[0]) {
		return nil, fmt.Errorf("%w: no street number in %q", ErrUnparseable, joined)
	}

	street, unit, city, ok := splitStreet(tokens)
	if !ok {
		return nil, fmt.Errorf("%w: cannot separate street from city in %q", ErrUnparseable, joined)
	}

	return &Address{
		Line1:      strings.Join(street, " "),
		Line2:      unit,
		City:       strings.Join(city, " "),
		State:      state,
		PostalCode: postal,
	}, nil
}

func tokenize(s string) []string {
	s = strings.ToUpper(s)
	s = strings.NewReplacer(",", " ", ".", " ", ";", " ").Replace(s)
	return strings.Fields(s)
}

func takePostal(tokens []string) (string, []string, bool) {
	last := len(tokens) - 1
	m := postalRegex.FindStringSubmatch(tokens[last])
	if m == nil {
		return "", tokens, false
	}
	postal := m[1]
	if m[2] != "" {
		postal += "-" + m[2]
	}
	return postal, tokens[:last], true
}

// takeState consumes a trailing state name (up to three words) or code.
func takeState(tokens []string) (string, []string, bool) {
	for words := 3; words >= 1; words-- {
		if len(tokens) <= words {
			continue
		}
		candidate := strings.ToLower(strings.Join(tokens[len(tokens)-words:], " "))
		if code, ok := usStates[candidate]; ok {
			return code, tokens[:len(tokens)-words], true
		}
	}
	if len(tokens) > 1 && IsStateCode(tokens[len(tokens)-1]) {
		return tokens[len(tokens)-1], tokens[:len(tokens)-1], true
	}
	return "", tokens, false
}

// splitStreet divides the tokens left after state and ZIP into the street
// line, an optional unit line and the city.
func splitStreet(tokens []string) (street []string, unit string, city []string, ok bool) {
	end := -1
	for i := 1; i < len(tokens); i++ {
		if _, isSuffix := streetSuffixes[tokens[i]]; isSuffix {
			end = i + 1
			break
		}
		if isUnit(tokens[i]) {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, "", nil, false
	}

	// trailing directional, e.g. "100 MAIN ST NW"
	if end < len(tokens)-1 {
		if _, isDir := directionals[tokens[end]]; isDir {
			end++
		}
	}

	street = make([]string, 0, end)
	for i, tok := range tokens[:end] {
		switch {
		case i == end-1 && streetSuffixes[tok] != "":
			tok = streetSuffixes[tok]
		case i > 0 && directionals[tok] != "":
			tok = directionals[tok]
		case i > 0 && streetSuffixes[tok] != "" && (i+1 < end && directionals[tokens[i+1]] != ""):
			tok = streetSuffixes[tok]
		}
		street = append(street, tok)
	}

	rest := tokens[end:]
	if len(rest) > 0 && isUnit(rest[0]) {
		switch {
		case strings.HasPrefix(rest[0], "#") && len(rest[0]) > 1:
			unit = rest[0]
			rest = rest[1:]
		case len(rest) > 2:
			unit = unitDesignators[rest[0]] + " " + rest[1]
			rest = rest[2:]
		default:
			return nil, "", nil, false
		}
	}

	if len(rest) == 0 {
		return nil, "", nil, false
	}
	return street, unit, rest, true
}

func isUnit(tok string) bool {
	if _, ok := unitDesignators[tok]; ok {
		return true
	}
	return strings.HasPrefix(tok, "#")
}

func startsWithDigit(tok string) bool {
	return tok != "" && tok[0] >= '0' && tok[0] <= '9'
}

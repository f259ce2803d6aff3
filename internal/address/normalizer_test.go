package address

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUSNormalizer_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Address
	}{
		{
			name:  "line1 city state zip",
			input: "1 Main St Springfield IL 62701",
			want:  Address{Line1: "1 MAIN ST", City: "SPRINGFIELD", State: "IL", PostalCode: "62701"},
		},
		{
			name:  "suite with full state name",
			input: "123 Abc St Suite 101 New York New York 12345",
			want:  Address{Line1: "123 ABC ST", Line2: "STE 101", City: "NEW YORK", State: "NY", PostalCode: "12345"},
		},
		{
			name:  "directional and zip+4 with punctuation",
			input: "500 North Elm Avenue Apt 4B Austin, Texas 73301-1234",
			want:  Address{Line1: "500 N ELM AVE", Line2: "APT 4B", City: "AUSTIN", State: "TX", PostalCode: "73301-1234"},
		},
		{
			name:  "post directional",
			input: "77 Market Street NW Washington DC 20001",
			want:  Address{Line1: "77 MARKET ST NW", City: "WASHINGTON", State: "DC", PostalCode: "20001"},
		},
		{
			name:  "unit without street suffix",
			input: "12 Broadway Apt 3 New York NY 10001",
			want:  Address{Line1: "12 BROADWAY", Line2: "APT 3", City: "NEW YORK", State: "NY", PostalCode: "10001"},
		},
		{
			name:  "hash unit",
			input: "9 Oak Ln #5 Portland OR 97201",
			want:  Address{Line1: "9 OAK LN", Line2: "#5", City: "PORTLAND", State: "OR", PostalCode: "97201"},
		},
		{
			name:  "nine digit zip without dash",
			input: "4 Pine Rd Boise ID 837021234",
			want:  Address{Line1: "4 PINE RD", City: "BOISE", State: "ID", PostalCode: "83702-1234"},
		},
	}

	n := NewUSNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestUSNormalizer_Unparseable(t *testing.T) {
	inputs := []string{
		"",
		"123 Abc St New York New York",
		"123 Abc St Springfield 62701",
		"Main St Springfield IL 62701",
		"123 Abc Springfield IL 62701",
	}

	n := NewUSNormalizer()
	for _, in := range inputs {
		_, err := n.Normalize(in)
		if !errors.Is(err, ErrUnparseable) {
			t.Errorf("Normalize(%q) error = %v, want ErrUnparseable", in, err)
		}
	}
}

func TestNormalizeState(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Illinois", "IL"},
		{" new york ", "NY"},
		{"ca", "CA"},
		{"TX", "TX"},
		{"Ontario", "Ontario"},
	}
	for _, tt := range tests {
		if got := NormalizeState(tt.in); got != tt.want {
			t.Errorf("NormalizeState(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAddress_String(t *testing.T) {
	a := Address{Line1: "1 MAIN ST", City: "SPRINGFIELD", State: "IL", PostalCode: "62701"}
	assert.Equal(t, "1 MAIN ST\nSPRINGFIELD IL 62701", a.String())

	a.Line2 = "STE 2"
	assert.Equal(t, "1 MAIN ST\nSTE 2\nSPRINGFIELD IL 62701", a.String())
}

package worlds

import "testing"

func TestGetStatus(t *testing.T) {
	p := NewStaticProvider("Gilgamesh", map[string]Classification{
		"Balmung":   Congested,
		"Siren":     Preferred,
		"Gilgamesh": Standard,
	})

	cases := []struct {
		world     string
		congested bool
		home      bool
	}{
		{"Balmung", true, false},
		{"Siren", false, false},
		{"Gilgamesh", false, true},
		{"gilgamesh", false, true}, // case-insensitive
		{"Midgardsormr", false, false},
	}

	for _, tc := range cases {
		s := p.GetStatus(tc.world)
		if s.Congested() != tc.congested {
			t.Errorf("%s: congested = %v, want %v", tc.world, s.Congested(), tc.congested)
		}
		if s.HomeWorld != tc.home {
			t.Errorf("%s: home = %v, want %v", tc.world, s.HomeWorld, tc.home)
		}
	}
}

func TestParseClassification(t *testing.T) {
	cases := []struct {
		in   string
		want Classification
		ok   bool
	}{
		{"standard", Standard, true},
		{"preferred", Preferred, true},
		{"congested", Congested, true},
		{"Congested", Congested, true}, // case-insensitive
		{"closed", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := ParseClassification(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseClassification(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestUnknownWorldDefaultsToStandard(t *testing.T) {
	p := NewStaticProvider("", nil)
	s := p.GetStatus("Anywhere")
	if s.Classification != Standard {
		t.Errorf("unknown world should be standard, got %s", s.Classification)
	}
}

package units

import (
	"math"
	"testing"
)

func TestParseAcceptsAliases(t *testing.T) {
	for _, s := range []string{"kpc", "microas", "µas", "degree", "°", "yr", "sunmass", "geometrical"} {
		if _, err := Parse(s); err != nil {
			t.Errorf("Parse(%q): %v", s, err)
		}
	}
	if _, err := Parse("furlong"); err == nil {
		t.Errorf("Parse(%q) should fail: furlong is not in the closed vocabulary", "furlong")
	}
}

func TestToGeometricalLengthGeometricalIsIdentity(t *testing.T) {
	got, err := ToGeometricalLength(42, Geometrical, 4e6)
	if err != nil || got != 42 {
		t.Errorf("ToGeometricalLength(42, Geometrical, _) = %v, %v, want 42, nil", got, err)
	}
}

func TestToGeometricalLengthKpcIsPositive(t *testing.T) {
	got, err := ToGeometricalLength(8, Kiloparsec, 4e6)
	if err != nil {
		t.Fatalf("ToGeometricalLength: %v", err)
	}
	if got <= 0 || math.IsInf(got, 0) || math.IsNaN(got) {
		t.Errorf("ToGeometricalLength(8 kpc, M=4e6 Msun) = %v, want a large finite positive value", got)
	}
}

func TestToRadiansDegreeVsMicroarcsecOrdering(t *testing.T) {
	deg, err := ToRadians(1, Degree)
	if err != nil {
		t.Fatalf("ToRadians degree: %v", err)
	}
	uas, err := ToRadians(1, Microarcsec)
	if err != nil {
		t.Fatalf("ToRadians microas: %v", err)
	}
	if uas >= deg {
		t.Errorf("1 microarcsecond (%v rad) should be vastly smaller than 1 degree (%v rad)", uas, deg)
	}
}

func TestToGeometricalLengthRejectsNonLengthUnit(t *testing.T) {
	if _, err := ToGeometricalLength(1, Year, 1); err == nil {
		t.Errorf("expected an error converting a time unit via ToGeometricalLength")
	}
}

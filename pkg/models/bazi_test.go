package models

import "testing"

func TestGenderNormalize(t *testing.T) {
	tests := []struct {
		in   Gender
		want Gender
	}{
		{Male, Male},
		{Female, Female},
		{"女", Female},
		{"f", Female},
		{"F", Female},
		{"男", Male},
		{"m", Male},
		{"", Male},
		{"unknown", Male},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBirthInputValidate(t *testing.T) {
	valid := BirthInput{Year: 1990, Month: 5, Day: 20, Hour: 15, Minute: 30}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	bad := []BirthInput{
		{Year: 1990, Month: 0, Day: 1},
		{Year: 1990, Month: 13, Day: 1},
		{Year: 1990, Month: 5, Day: 0},
		{Year: 1990, Month: 5, Day: 32},
		{Year: 1990, Month: 5, Day: 20, Hour: -1},
		{Year: 1990, Month: 5, Day: 20, Hour: 24},
		{Year: 1990, Month: 5, Day: 20, Hour: 12, Minute: 60},
	}
	for _, in := range bad {
		if err := in.Validate(); err == nil {
			t.Errorf("Validate(%+v) accepted invalid input", in)
		}
	}
}

func TestPillarGanzhi(t *testing.T) {
	p := Pillar{Stem: "乙", Branch: "酉"}
	if got := p.Ganzhi(); got != "乙酉" {
		t.Errorf("Ganzhi() = %q, want 乙酉", got)
	}
}

func TestPillarSpecEmpty(t *testing.T) {
	if !(PillarSpec{}).Empty() {
		t.Error("zero spec should be empty")
	}
	if (PillarSpec{Stem: "甲"}).Empty() {
		t.Error("stem-only spec should not be empty")
	}
	if (PillarSpec{Branch: "子"}).Empty() {
		t.Error("branch-only spec should not be empty")
	}
}

func TestFoundDateString(t *testing.T) {
	d := FoundDate{Year: 1990, Month: 5, Day: 20, Hour: 15}
	if got := d.String(); got != "1990-05-20 15:00" {
		t.Errorf("String() = %q", got)
	}
}

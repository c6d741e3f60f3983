package playback

import "testing"

func TestPrimaryStateIsActive(t *testing.T) {
	active := map[PrimaryState]bool{
		Idle:         false,
		Initializing: true,
		Playing:      true,
		Paused:       true,
		Ended:        false,
		Destroyed:    false,
	}
	for state, want := range active {
		if got := state.IsActive(); got != want {
			t.Errorf("%v.IsActive() = %v, want %v", state, got, want)
		}
	}
}

func TestFlagsSetAndClear(t *testing.T) {
	var fl Flags

	fl = fl.With(FlagBuffering).With(FlagSeeking)
	if !fl.Has(FlagBuffering) || !fl.Has(FlagSeeking) {
		t.Fatalf("flags = %v, want buffering|seeking", fl)
	}
	if fl.Has(FlagError) {
		t.Error("error flag set without With")
	}

	fl = fl.Without(FlagBuffering)
	if fl.Has(FlagBuffering) {
		t.Error("buffering flag survived Without")
	}
	if !fl.Has(FlagSeeking) {
		t.Error("Without cleared an unrelated flag")
	}
}

func TestFlagsString(t *testing.T) {
	if got := Flags(0).String(); got != "none" {
		t.Errorf("empty flags = %q, want none", got)
	}
	fl := FlagBuffering | FlagError
	if got := fl.String(); got != "buffering|error" {
		t.Errorf("flags = %q, want buffering|error", got)
	}
}

func TestNearestRate(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.1, 0.5},
		{0.9, 0.8},
		{1.0, 1.0},
		{1.44, 1.5},
		{1.7, 1.5},
		{2.4, 2.0},
		{10, 3.0},
	}
	for _, c := range cases {
		if got := NearestRate(c.in); got != c.want {
			t.Errorf("NearestRate(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

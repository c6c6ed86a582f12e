package normalize

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Toyota", "toyota"},
		{"  VW ", "volkswagen"},
		{"Mercedes", "mercedes-benz"},
		{"Škoda", "skoda"},
		{"Range Rover", "range-rover"},
		{"", ""},
		{"   ", ""},
		{"Polestar", "polestar"},
	}

	for _, tt := range tests {
		if got := Make(tt.in); got != tt.want {
			t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Yaris", "yaris"},
		{"Model 3", "model3"},
		{"ID.4", "id4"},
		{"Sportage Premium", "sportage"},
		{"Qashqai Tekna", "qashqai"},
		{"Golf GTI", "golf"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Model(tt.in); got != tt.want {
			t.Errorf("Model(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayForms(t *testing.T) {
	if got := DisplayMake("mercedes-benz"); got != "Mercedes-Benz" {
		t.Errorf("DisplayMake(mercedes-benz) = %q", got)
	}
	if got := DisplayMake("toyota"); got != "Toyota" {
		t.Errorf("DisplayMake(toyota) = %q", got)
	}
	if got := DisplayName("model3"); got != "Model 3" {
		t.Errorf("DisplayName(model3) = %q", got)
	}
	if got := DisplayName("santa fe"); got != "Santa Fe" {
		t.Errorf("DisplayName(santa fe) = %q", got)
	}
}

func TestIsKnownMake(t *testing.T) {
	if !IsKnownMake("toyota") {
		t.Error("IsKnownMake(toyota) = false")
	}
	if !IsKnownMake(Make("VW")) {
		t.Error("IsKnownMake(Make(VW)) = false")
	}
	if IsKnownMake("winter tires") {
		t.Error("IsKnownMake(winter tires) = true")
	}
}

package mc

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"explicit success", "Successfully filled 1234 blocks", true},
		{"gamerule query", "Gamerule doDaylightCycle is currently set to: false", true},
		{"teleport success", "Teleported Steve to 0, 64, 0", true},
		{"plain error", "An unexpected error occurred", false},
		{"unknown command", "Unknown command at position 0", false},
		{"cannot place", "Cannot place blocks outside of the world", false},
		{"no player", "No player was found", false},
		{"error wins over success", "Successfully started but failed to complete", false},
		{"unrecognized phrasing defaults to success", "Command executed", true},
		{"empty is failure", "", false},
		{"whitespace only is failure", "   \n\t ", false},
		{"case insensitive", "ERROR: out of world bounds", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.raw); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseUnitsAffected(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"Successfully filled 1234 blocks", 1234},
		{"Filled 5678 blocks with grass_block", 5678},
		{"successfully filled 1 block", 1},
		{"32768 blocks filled", 32768},
		{"Command executed", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := ParseUnitsAffected(tt.raw); got != tt.want {
			t.Errorf("ParseUnitsAffected(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParseGameruleValue(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"Gamerule doDaylightCycle is currently set to: false", "false", true},
		{"Gamerule randomTickSpeed is currently set to 3", "3", true},
		{"gamerule KEEPINVENTORY IS CURRENTLY SET TO: true", "true", true},
		{"Unknown command", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseGameruleValue(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseGameruleValue(%q) = (%q, %v), want (%q, %v)",
				tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

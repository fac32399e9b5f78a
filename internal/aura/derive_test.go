package aura

import "testing"

func TestBandBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  Band
	}{
		{-5, BandLow},
		{0, BandLow},
		{20, BandLow},
		{21, BandGrowing},
		{50, BandGrowing},
		{51, BandBalanced},
		{80, BandBalanced},
		{81, BandMax},
		{100, BandMax},
		{250, BandMax},
	}
	for _, tt := range tests {
		if got := BandOf(tt.score); got != tt.want {
			t.Errorf("BandOf(%d): expected %s, got %s", tt.score, tt.want, got)
		}
	}
}

func TestTaglineBands(t *testing.T) {
	for s := 0; s <= 20; s++ {
		if got := Tagline(s); got != "Your vibe’s fading… come back soon" {
			t.Errorf("Tagline(%d) = %q", s, got)
		}
	}
	if got := Tagline(21); got != "A small glow! Keep going." {
		t.Errorf("Tagline(21) = %q", got)
	}
	if got := Tagline(51); got != "You’re glowing! Keep it up." {
		t.Errorf("Tagline(51) = %q", got)
	}
	if got := Tagline(100); got != "Aura Maxxed — You’re on fire 🔥" {
		t.Errorf("Tagline(100) = %q", got)
	}
}

func TestColorsAndLabels(t *testing.T) {
	tests := []struct {
		score        int
		color, label string
	}{
		{10, "#FF5555", "Low Energy"},
		{35, "#FFD700", "Growing Vibe"},
		{70, "#55AAFF", "Balanced Energy"},
		{95, "#FF66FF", "Max Aura"},
	}
	for _, tt := range tests {
		if got := Color(tt.score); got != tt.color {
			t.Errorf("Color(%d): expected %s, got %s", tt.score, tt.color, got)
		}
		if got := VibeLabel(tt.score); got != tt.label {
			t.Errorf("VibeLabel(%d): expected %s, got %s", tt.score, tt.label, got)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, `Ava says: "Hey, let’s recharge your vibe! 🔋"`},
		{50, `Ava says: "You’re starting to glow—keep it up! ✨"`},
		{80, `Ava says: "Today’s vibe is brain fuel 💡"`},
		{81, `Ava says: "You’re absolutely slaying it! 🔥"`},
	}
	for _, tt := range tests {
		if got := Quote(tt.score, "Ava"); got != tt.want {
			t.Errorf("Quote(%d): expected %s, got %s", tt.score, tt.want, got)
		}
	}
}

func TestDerivationIsContiguousAndPure(t *testing.T) {
	prev := BandOf(0)
	changes := 0
	for s := 0; s <= 100; s++ {
		b := BandOf(s)
		if b < prev {
			t.Fatalf("band went backwards at %d", s)
		}
		if b != prev {
			changes++
			if s != 21 && s != 51 && s != 81 {
				t.Errorf("unexpected band change at %d", s)
			}
		}
		prev = b

		if Present(s, "Max") != Present(s, "Max") {
			t.Errorf("Present(%d) not deterministic", s)
		}
	}
	if changes != 3 {
		t.Errorf("expected 3 band changes, got %d", changes)
	}
}

func TestPresentOmitsQuoteWithoutHost(t *testing.T) {
	p := Present(42, "")
	if p.Quote != "" {
		t.Errorf("expected no quote, got %q", p.Quote)
	}
	if p.Band != BandGrowing || p.VibeLabel != "Growing Vibe" {
		t.Errorf("unexpected presentation: %+v", p)
	}
}

func TestPresentClampsScore(t *testing.T) {
	tests := []struct {
		in, want int
		band     Band
	}{
		{150, 100, BandMax},
		{-7, 0, BandLow},
		{64, 64, BandBalanced},
	}
	for _, tt := range tests {
		p := Present(tt.in, "Ava")
		if p.Score != tt.want || p.Band != tt.band {
			t.Errorf("Present(%d) = score %d band %s, want %d %s", tt.in, p.Score, p.Band, tt.want, tt.band)
		}
	}
}

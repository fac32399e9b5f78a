package aura

import (
	"fmt"

	"github.com/rcliao/vibecast/internal/model"
)

// Band is a contiguous range of scores sharing one set of display strings.
type Band int

const (
	BandLow      Band = iota // [0,20]
	BandGrowing              // (20,50]
	BandBalanced             // (50,80]
	BandMax                  // (80,100]
)

type bandText struct {
	name    string
	upper   int // inclusive
	tagline string
	color   string
	label   string
	quote   string
}

var bands = [...]bandText{
	BandLow: {
		name:    "low",
		upper:   20,
		tagline: "Your vibe’s fading… come back soon",
		color:   "#FF5555",
		label:   "Low Energy",
		quote:   "Hey, let’s recharge your vibe! 🔋",
	},
	BandGrowing: {
		name:    "growing",
		upper:   50,
		tagline: "A small glow! Keep going.",
		color:   "#FFD700",
		label:   "Growing Vibe",
		quote:   "You’re starting to glow—keep it up! ✨",
	},
	BandBalanced: {
		name:    "balanced",
		upper:   80,
		tagline: "You’re glowing! Keep it up.",
		color:   "#55AAFF",
		label:   "Balanced Energy",
		quote:   "Today’s vibe is brain fuel 💡",
	},
	BandMax: {
		name:    "max",
		upper:   model.MaxAuraScore,
		tagline: "Aura Maxxed — You’re on fire 🔥",
		color:   "#FF66FF",
		label:   "Max Aura",
		quote:   "You’re absolutely slaying it! 🔥",
	},
}

// BandOf returns the band of score. Scores outside [0,100] are clamped.
func BandOf(score int) Band {
	score = model.ClampScore(score)
	for b, t := range bands {
		if score <= t.upper {
			return Band(b)
		}
	}
	return BandMax
}

func (b Band) String() string {
	if b < BandLow || b > BandMax {
		return fmt.Sprintf("Band(%d)", int(b))
	}
	return bands[b].name
}

func (b Band) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *Band) UnmarshalText(text []byte) error {
	for i, t := range bands {
		if t.name == string(text) {
			*b = Band(i)
			return nil
		}
	}
	return fmt.Errorf("unknown band %q", text)
}

// Tagline is the motivational line shown under the score.
func Tagline(score int) string { return bands[BandOf(score)].tagline }

// Color is the aura ring color token, as a hex RGB string.
func Color(score int) string { return bands[BandOf(score)].color }

// VibeLabel is the short name of the score band.
func VibeLabel(score int) string { return bands[BandOf(score)].label }

// Quote is the band's line attributed to host.
func Quote(score int, host string) string {
	return fmt.Sprintf("%s says: \"%s\"", host, bands[BandOf(score)].quote)
}

// Presentation bundles everything a screen shows for a score.
type Presentation struct {
	Score     int    `json:"score"`
	Band      Band   `json:"band"`
	Tagline   string `json:"tagline"`
	Color     string `json:"color"`
	VibeLabel string `json:"vibe_label"`
	Quote     string `json:"quote,omitempty"`
}

// Present derives the display data for score, clamped to [0,100]. The quote
// is omitted when host is empty.
func Present(score int, host string) Presentation {
	score = model.ClampScore(score)
	p := Presentation{
		Score:     score,
		Band:      BandOf(score),
		Tagline:   Tagline(score),
		Color:     Color(score),
		VibeLabel: VibeLabel(score),
	}
	if host != "" {
		p.Quote = Quote(score, host)
	}
	return p
}

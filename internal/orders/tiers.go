package orders

// Tier is a purchasable plan: a fixed price, headshot count and style set.
// Tier and headshot count are fixed at checkout and never change afterwards.
type Tier struct {
	Name            string
	DisplayName     string
	PriceCents      int64
	HeadshotCount   int
	Styles          []string
	UpscaleIncluded bool
}

var tiers = map[string]Tier{
	"starter": {
		Name:          "starter",
		DisplayName:   "Starter",
		PriceCents:    2900,
		HeadshotCount: 10,
		Styles:        []string{"office", "studio"},
	},
	"professional": {
		Name:            "professional",
		DisplayName:     "Professional",
		PriceCents:      4900,
		HeadshotCount:   30,
		Styles:          []string{"office", "studio", "outdoor"},
		UpscaleIncluded: true,
	},
	"executive": {
		Name:            "executive",
		DisplayName:     "Executive",
		PriceCents:      9900,
		HeadshotCount:   60,
		Styles:          []string{"office", "studio", "outdoor", "conference", "editorial"},
		UpscaleIncluded: true,
	},
}

// stylePrompts holds the generation prompt per style. The subject token is
// substituted by the provider with the trained identity.
var stylePrompts = map[string]string{
	"office":     "professional headshot of sks person, business attire, modern office background, soft natural light",
	"studio":     "professional studio headshot of sks person, neutral grey backdrop, three-point lighting, sharp focus",
	"outdoor":    "professional headshot of sks person, outdoor urban background, golden hour light, shallow depth of field",
	"conference": "professional headshot of sks person, conference stage background, confident expression, dramatic lighting",
	"editorial":  "editorial portrait of sks person, magazine cover style, high contrast lighting, dark background",
}

// LookupTier returns the tier for a plan name.
func LookupTier(name string) (Tier, bool) {
	t, ok := tiers[name]
	return t, ok
}

// TierNames lists the purchasable plan names.
func TierNames() []string {
	names := make([]string, 0, len(tiers))
	for name := range tiers {
		names = append(names, name)
	}
	return names
}

// PromptForStyle returns the generation prompt for a style. Unknown styles
// fall back to the studio prompt.
func PromptForStyle(style string) string {
	if p, ok := stylePrompts[style]; ok {
		return p
	}
	return stylePrompts["studio"]
}

// SplitCount distributes an order's target headshot count across its styles.
// The first styles absorb the remainder so the counts always sum to target.
func SplitCount(target, styles int) []int {
	if styles <= 0 {
		return nil
	}
	counts := make([]int, styles)
	base := target / styles
	rem := target % styles
	for i := range counts {
		counts[i] = base
		if i < rem {
			counts[i]++
		}
	}
	return counts
}

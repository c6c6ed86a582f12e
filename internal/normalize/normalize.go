// Package normalize canonicalizes vehicle make and model strings so that
// attribute matching compares like with like. Display formatting is kept
// separate from the normalized forms and never participates in matching.
package normalize

import "strings"

// makeAliases maps common make spellings to their canonical form.
var makeAliases = map[string]string{
	"vw":          "volkswagen",
	"volks wagen": "volkswagen",
	"merc":        "mercedes-benz",
	"mb":          "mercedes-benz",
	"mercedes":    "mercedes-benz",
	"chevy":       "chevrolet",
	"toy":         "toyota",
	"land rover":  "land-rover",
	"range rover": "range-rover",
	"rangerover":  "range-rover",
	"škoda":       "skoda",
}

// modelAliases collapses model spelling variants before trim-token stripping.
var modelAliases = map[string]string{
	"model s":   "models",
	"model 3":   "model3",
	"model y":   "modely",
	"model x":   "modelx",
	"c-hr":      "chr",
	"i-pace":    "ipace",
	"e-tron":    "etron",
	"id.3":      "id3",
	"id.4":      "id4",
	"id.5":      "id5",
	"ioniq5":    "ioniq 5",
	"santa fe":  "santafe",
	"grand cherokee": "grandcherokee",
}

// displayNames maps normalized tokens back to their proper display format.
var displayNames = map[string]string{
	"models":         "Model S",
	"model3":         "Model 3",
	"modely":         "Model Y",
	"modelx":         "Model X",
	"etron":          "e-tron",
	"ipace":          "I-PACE",
	"chr":            "C-HR",
	"id3":            "ID.3",
	"id4":            "ID.4",
	"id5":            "ID.5",
	"ioniq 5":        "IONIQ 5",
	"santafe":        "Santa Fe",
	"grandcherokee":  "Grand Cherokee",
	"mercedes-benz":  "Mercedes-Benz",
	"volkswagen":     "Volkswagen",
	"land-rover":     "Land Rover",
	"range-rover":    "Range Rover",
	"bmw":            "BMW",
}

// trimTokens are trim levels and edition markers stripped from model names.
var trimTokens = map[string]struct{}{
	"premium": {}, "comfort": {}, "sport": {}, "gt": {}, "gti": {}, "gtd": {},
	"amg": {}, "rs": {}, "m-sport": {}, "msport": {}, "s-line": {}, "sline": {},
	"limited": {}, "ultimate": {}, "elegance": {}, "advanced": {}, "luxury": {},
	"exclusive": {}, "standard": {}, "prestige": {}, "platinum": {}, "style": {},
	"active": {}, "classic": {}, "progressive": {}, "intense": {}, "inscription": {},
	"acenta": {}, "tekna": {}, "trailhawk": {}, "rubicon": {}, "sahara": {},
}

// knownMakes is the whitelist used to decide whether a structured extraction
// describes a vehicle at all.
var knownMakes = map[string]struct{}{
	"toyota": {}, "volkswagen": {}, "skoda": {}, "audi": {}, "seat": {},
	"bmw": {}, "mercedes-benz": {}, "mini": {}, "ford": {}, "chevrolet": {},
	"opel": {}, "peugeot": {}, "citroen": {}, "renault": {}, "dacia": {},
	"fiat": {}, "kia": {}, "hyundai": {}, "mazda": {}, "nissan": {},
	"honda": {}, "mitsubishi": {}, "subaru": {}, "suzuki": {}, "volvo": {},
	"tesla": {}, "lexus": {}, "jaguar": {}, "land-rover": {}, "range-rover": {},
	"jeep": {}, "porsche": {}, "dodge": {}, "ram": {}, "isuzu": {},
	"ssangyong": {}, "polestar": {}, "byd": {}, "mg": {}, "cupra": {},
	"smart": {}, "ds": {}, "maxus": {}, "chrysler": {}, "hummer": {},
}

// Make canonicalizes a make string: lowercased, trimmed, alias-resolved.
// Returns "" for blank input.
func Make(raw string) string {
	m := strings.ToLower(strings.TrimSpace(raw))
	if m == "" {
		return ""
	}
	if canonical, ok := makeAliases[m]; ok {
		return canonical
	}
	return m
}

// Model canonicalizes a model string: lowercased, alias-resolved, trim and
// edition tokens stripped. Returns "" when nothing identifying remains.
func Model(raw string) string {
	m := strings.ToLower(strings.TrimSpace(raw))
	if m == "" {
		return ""
	}
	if canonical, ok := modelAliases[m]; ok {
		m = canonical
	}

	fields := strings.Fields(m)
	kept := fields[:0]
	for _, f := range fields {
		if _, drop := trimTokens[f]; !drop {
			kept = append(kept, f)
		}
	}

	return strings.Join(kept, " ")
}

// DisplayMake returns the presentation form of a normalized make.
func DisplayMake(normalized string) string {
	if display, ok := displayNames[normalized]; ok {
		return display
	}
	return titleCase(normalized)
}

// DisplayName returns the presentation form of a normalized model.
func DisplayName(normalized string) string {
	if display, ok := displayNames[normalized]; ok {
		return display
	}
	return titleCase(normalized)
}

// IsKnownMake reports whether a normalized make is on the vehicle whitelist.
func IsKnownMake(normalized string) bool {
	_, ok := knownMakes[normalized]
	return ok
}

// titleCase uppercases the first letter of each space- or hyphen-separated
// word. Good enough for display fallbacks; curated names live in displayNames.
func titleCase(s string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range s {
		switch {
		case r == ' ' || r == '-':
			upperNext = true
			b.WriteRune(r)
		case upperNext:
			b.WriteString(strings.ToUpper(string(r)))
			upperNext = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

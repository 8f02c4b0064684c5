package constants

import "strings"

type Category string

const (
	Transport     Category = "Transport"
	Accommodation Category = "Accommodation"
	FoodDining    Category = "Food/Dining"
	Medical       Category = "Medical"
	Equipment     Category = "Equipment"
	Services      Category = "Services"
	Other         Category = "Other"
)

// allCategories order matters: keyword ties resolve to the earliest entry.
var allCategories = []Category{
	Transport,
	Accommodation,
	FoodDining,
	Medical,
	Equipment,
	Services,
	Other,
}

// categoryKeywords maps each category to merchant/receipt vocabulary
// (French and English, the documents we see are mostly French).
var categoryKeywords = map[Category][]string{
	Transport: {
		"avion", "billet", "vol", "flight", "train", "sncf", "taxi", "uber", "vtc",
		"parking", "péage", "essence", "carburant", "lufthansa", "air france",
		"easyjet", "ryanair", "eurostar", "thalys", "blablacar",
	},
	Accommodation: {
		"hotel", "hôtel", "hilton", "ibis", "novotel", "airbnb", "booking",
		"chambre", "nuit", "séjour", "marriott", "accor", "mercure", "logement",
	},
	FoodDining: {
		"restaurant", "repas", "déjeuner", "dîner", "café", "bar", "brasserie",
		"pizzeria", "menu", "addition", "mcdonalds", "burger", "sandwich", "traiteur",
	},
	Medical: {
		"pharmacie", "médecin", "kiné", "ostéo", "hôpital", "clinique", "dentiste",
		"santé", "ordonnance", "mutuelle", "sécurité sociale", "analyse", "laboratoire",
	},
	Equipment: {
		"raquette", "cordage", "chaussure", "vêtement", "équipement", "sport",
		"tennis", "matériel", "babolat", "wilson", "head", "nike", "adidas",
	},
	Services: {
		"coaching", "entraînement", "cours", "formation", "consulting", "service",
		"abonnement", "licence", "fédération", "assurance",
	},
	Other: {},
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// DetectFromText scores every category by keyword hits in text and returns
// the best match, falling back to Other when nothing matches.
func DetectFromText(text string) Category {
	textLower := strings.ToLower(text)

	best := Other
	bestScore := 0
	for _, cat := range allCategories {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(textLower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}
	return best
}

// Canonicalize maps a free-form label onto the taxonomy. The second return
// reports whether the input matched anything.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}
	normalized := strings.ToLower(strings.TrimSpace(input))

	// labels the extractor or legacy clients may still emit
	synonyms := map[string]Category{
		"travel":       Transport,
		"hébergement":  Accommodation,
		"hebergement":  Accommodation,
		"lodging":      Accommodation,
		"restauration": FoodDining,
		"restaurant":   FoodDining,
		"food":         FoodDining,
		"dining":       FoodDining,
		"médical":      Medical,
		"medical":      Medical,
		"matériel":     Equipment,
		"materiel":     Equipment,
		"autre":        Other,
	}
	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}
	return Other, false
}

// MapToLegacy translates the taxonomy into the buckets the old expense
// endpoint exposed (travel/invoices/medical/other).
func MapToLegacy(c Category) string {
	switch c {
	case Transport, Accommodation:
		return "travel"
	case FoodDining, Services:
		return "invoices"
	case Medical:
		return "medical"
	default:
		return "other"
	}
}

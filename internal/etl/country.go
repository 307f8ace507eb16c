package etl

// countryAliases maps the spellings seen in the exports to canonical country
// names. Unlisted values pass through unchanged.
var countryAliases = map[string]string{
	"España":      "España",
	"ESPAÑA":      "España",
	"ES":          "España",
	"Portugal":    "Portugal",
	"PT":          "Portugal",
	"Marruecos":   "Marruecos",
	"MARRUECOS":   "Marruecos",
	"MAR":         "Marruecos",
	"Desconocido": "Desconocido",
}

// NormalizeCountry resolves a country value through the alias table.
// The lookup is exact: lowercase "pt" is not an alias and passes through.
func NormalizeCountry(value string) string {
	if canonical, ok := countryAliases[value]; ok {
		return canonical
	}
	return value
}

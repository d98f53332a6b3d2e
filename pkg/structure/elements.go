package structure

import "strings"

// ElementInfo holds the per-element constants the pipeline needs.
type ElementInfo struct {
	Symbol         string
	Number         int
	CovalentRadius float32 // Å
	VdwRadius      float32 // Å
}

// DefaultVdwRadius is used for symbols missing from the table.
const DefaultVdwRadius = 2.0

// DefaultCovalentRadius is used for symbols missing from the table.
const DefaultCovalentRadius = 0.77

var elements = map[string]ElementInfo{
	"H":  {"H", 1, 0.31, 1.10},
	"C":  {"C", 6, 0.76, 1.70},
	"N":  {"N", 7, 0.71, 1.55},
	"O":  {"O", 8, 0.66, 1.52},
	"F":  {"F", 9, 0.57, 1.47},
	"Na": {"Na", 11, 1.66, 2.27},
	"Mg": {"Mg", 12, 1.41, 1.73},
	"P":  {"P", 15, 1.07, 1.80},
	"S":  {"S", 16, 1.05, 1.80},
	"Cl": {"Cl", 17, 1.02, 1.75},
	"K":  {"K", 19, 2.03, 2.75},
	"Ca": {"Ca", 20, 1.76, 2.31},
	"Mn": {"Mn", 25, 1.39, 2.05},
	"Fe": {"Fe", 26, 1.32, 2.04},
	"Co": {"Co", 27, 1.26, 2.00},
	"Ni": {"Ni", 28, 1.24, 1.97},
	"Cu": {"Cu", 29, 1.32, 1.96},
	"Zn": {"Zn", 30, 1.22, 2.01},
	"Se": {"Se", 34, 1.20, 1.90},
	"Br": {"Br", 35, 1.20, 1.85},
	"I":  {"I", 53, 1.39, 1.98},
}

// NormalizeSymbol returns the canonical capitalisation of an element
// symbol ("CL" -> "Cl").
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return ""
	}
	return strings.ToUpper(symbol[:1]) + strings.ToLower(symbol[1:])
}

// Element looks up an element by symbol. Unknown symbols yield an entry
// with Number 0 and the default radii.
func Element(symbol string) ElementInfo {
	symbol = NormalizeSymbol(symbol)
	if e, ok := elements[symbol]; ok {
		return e
	}
	return ElementInfo{
		Symbol:         symbol,
		CovalentRadius: DefaultCovalentRadius,
		VdwRadius:      DefaultVdwRadius,
	}
}

// IsKnownElement reports whether the symbol is in the element table.
func IsKnownElement(symbol string) bool {
	_, ok := elements[NormalizeSymbol(symbol)]
	return ok
}

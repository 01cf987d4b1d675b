package xlsheet

import "strings"

// Sentinel prefixes for cell text.
const (
	// FormulaSign marks a formula cell ("=A1+B2").
	FormulaSign = '='
	// EscapeSign suppresses formula interpretation ("'=not a formula").
	EscapeSign = '\''
)

type cellKind int

const (
	cellEmpty cellKind = iota
	cellText
	cellFormula
)

// Cell is a single sheet slot holding empty, text, or formula content. The
// computed value is memoized until ResetCache is called.
type Cell struct {
	sheet     *Sheet
	kind      cellKind
	text      string
	formula   Formula
	cached    Value
	hasCached bool
}

func newCell(sheet *Sheet) *Cell {
	return &Cell{sheet: sheet}
}

// set replaces the cell content from raw text. Text beginning with
// FormulaSign (and at least one more character) is parsed as a formula; a
// parse failure leaves the cell unmodified.
func (c *Cell) set(text string) error {
	switch {
	case text == "":
		c.kind = cellEmpty
		c.text = ""
		c.formula = nil
	case text[0] == FormulaSign && len(text) > 1:
		formula, err := c.sheet.parseFormula(text[1:])
		if err != nil {
			return err
		}
		c.kind = cellFormula
		c.text = text
		c.formula = formula
	default:
		c.kind = cellText
		c.text = text
		c.formula = nil
	}
	c.ResetCache()
	return nil
}

// clear resets the cell to Empty.
func (c *Cell) clear() {
	c.kind = cellEmpty
	c.text = ""
	c.formula = nil
	c.ResetCache()
}

// GetValue returns the computed value: "" for Empty, the display text for
// Text (a leading EscapeSign is stripped), and the evaluation result for
// Formula (a float64 or a FormulaError). The result is memoized.
func (c *Cell) GetValue() Value {
	if c.hasCached {
		return c.cached
	}
	c.cached = c.computeValue()
	c.hasCached = true
	return c.cached
}

func (c *Cell) computeValue() Value {
	switch c.kind {
	case cellText:
		return strings.TrimPrefix(c.text, string(EscapeSign))
	case cellFormula:
		return c.formula.Evaluate(c.sheet.lookupValue)
	default:
		return ""
	}
}

// GetText returns the raw stored text. For formulas it is the canonical
// printed expression with the leading FormulaSign.
func (c *Cell) GetText() string {
	if c.kind == cellFormula {
		return string(FormulaSign) + c.formula.Expression()
	}
	return c.text
}

// GetReferencedCells returns the positions the cell's formula references,
// sorted row-major and deduplicated. Non-formula cells reference nothing.
func (c *Cell) GetReferencedCells() []Position {
	if c.kind != cellFormula {
		return nil
	}
	return c.formula.ReferencedCells()
}

// ResetCache drops the memoized value so the next GetValue recomputes it.
func (c *Cell) ResetCache() {
	c.cached = nil
	c.hasCached = false
}

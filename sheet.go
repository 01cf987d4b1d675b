package xlsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Sheet is a sparse spreadsheet grid with formula evaluation, dependency
// tracking, and cycle rejection. Not safe for concurrent use.
type Sheet struct {
	cells     map[Position]*Cell
	graph     *dependencyGraph
	printable Size
	formulas  *lru.Cache[string, Formula]
}

// NewSheet creates an empty sheet.
func NewSheet(opts ...Option) *Sheet {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	cache, _ := lru.New[string, Formula](o.formulaCacheSize)
	return &Sheet{
		cells:    make(map[Position]*Cell),
		graph:    newDependencyGraph(),
		formulas: cache,
	}
}

// parseFormula compiles an expression, reusing the compiled form for repeated
// expression text.
func (s *Sheet) parseFormula(expression string) (Formula, error) {
	if formula, ok := s.formulas.Get(expression); ok {
		return formula, nil
	}
	formula, err := ParseFormula(expression)
	if err != nil {
		return nil, err
	}
	s.formulas.Add(expression, formula)
	return formula, nil
}

// lookupValue resolves a referenced position for formula evaluation. Absent
// slots read as 0.
func (s *Sheet) lookupValue(pos Position) Value {
	cell, ok := s.cells[pos]
	if !ok {
		return 0.0
	}
	return cell.GetValue()
}

// SetCell replaces the content at pos with text. On any failure the sheet is
// left exactly as it was: a parse error, a self-reference, or a reference
// cycle rolls back every intermediate step.
func (s *Sheet) SetCell(pos Position, text string) error {
	if err := validatePosition(pos); err != nil {
		return fmt.Errorf("set cell: %w", err)
	}

	cell := newCell(s)
	if err := cell.set(text); err != nil {
		return fmt.Errorf("set cell %s: %w", pos, err)
	}

	newRefs := cell.GetReferencedCells()
	for _, ref := range newRefs {
		if ref == pos {
			return fmt.Errorf("cell %s references itself: %w", pos, ErrCircularDependency)
		}
	}

	// Referenced slots that do not exist yet are materialized as Empty cells
	// so the graph has nodes to attach edges to.
	var phantoms []Position
	for _, ref := range newRefs {
		if _, ok := s.cells[ref]; !ok {
			s.placeCell(ref, newCell(s))
			phantoms = append(phantoms, ref)
		}
	}

	// Snapshot and detach the old outgoing edges. Reading them from the graph
	// rather than the old cell also covers slots cleared by ClearCell, whose
	// node and edges are retained.
	oldRefs := s.graph.ForwardEdges(pos)
	for _, ref := range oldRefs {
		s.graph.RemoveDependency(pos, ref)
	}

	s.graph.AddCell(pos)
	for _, ref := range newRefs {
		s.graph.AddCell(ref)
		s.graph.AddDependency(pos, ref)
	}

	if !s.graph.IsAcyclicFrom(pos) {
		for _, ref := range newRefs {
			s.graph.RemoveDependency(pos, ref)
		}
		for _, ref := range phantoms {
			s.removeSlot(ref)
		}
		for _, ref := range oldRefs {
			s.graph.AddCell(ref)
			s.graph.AddDependency(pos, ref)
		}
		return fmt.Errorf("cell %s completes a reference cycle: %w", pos, ErrCircularDependency)
	}

	s.graph.InvalidateAncestors(pos, func(p Position) {
		if cell, ok := s.cells[p]; ok {
			cell.ResetCache()
		}
	})
	s.placeCell(pos, cell)
	return nil
}

// GetCell returns the cell at pos, or nil if the slot is absent.
func (s *Sheet) GetCell(pos Position) (*Cell, error) {
	if err := validatePosition(pos); err != nil {
		return nil, fmt.Errorf("get cell: %w", err)
	}
	return s.cells[pos], nil
}

// GetConcreteCell returns the slot at pos without bounds checking.
func (s *Sheet) GetConcreteCell(pos Position) *Cell {
	return s.cells[pos]
}

// ClearCell removes the slot at pos. Cells whose formulas read pos keep
// evaluating; the absent slot resolves to 0. The graph node and its edges are
// retained so a later SetCell at pos can still see who depends on it.
func (s *Sheet) ClearCell(pos Position) error {
	if err := validatePosition(pos); err != nil {
		return fmt.Errorf("clear cell: %w", err)
	}
	if _, ok := s.cells[pos]; !ok {
		return nil
	}
	if s.graph.Contains(pos) {
		s.graph.InvalidateAncestors(pos, func(p Position) {
			if cell, ok := s.cells[p]; ok {
				cell.ResetCache()
			}
		})
	}
	s.removeSlot(pos)
	return nil
}

// GetPrintableSize returns the minimal bounding box covering every present
// slot.
func (s *Sheet) GetPrintableSize() Size {
	return s.printable
}

// PrintValues writes the printable region as tab-separated computed values,
// one row per line.
func (s *Sheet) PrintValues(w io.Writer) error {
	_, err := io.WriteString(w, s.print(func(cell *Cell) string {
		return formatValue(cell.GetValue())
	}))
	return err
}

// PrintTexts writes the printable region as tab-separated raw texts, one row
// per line.
func (s *Sheet) PrintTexts(w io.Writer) error {
	_, err := io.WriteString(w, s.print(func(cell *Cell) string {
		return cell.GetText()
	}))
	return err
}

func (s *Sheet) print(render func(*Cell) string) string {
	var out strings.Builder
	for r := 0; r < s.printable.Rows; r++ {
		for c := 0; c < s.printable.Cols; c++ {
			if c > 0 {
				out.WriteByte('\t')
			}
			if cell, ok := s.cells[Position{Row: r, Col: c}]; ok {
				out.WriteString(render(cell))
			}
		}
		out.WriteByte('\n')
	}
	return out.String()
}

func formatValue(v Value) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case FormulaError:
		return val.String()
	default:
		return ""
	}
}

func (s *Sheet) placeCell(pos Position, cell *Cell) {
	s.cells[pos] = cell
	if pos.Row+1 > s.printable.Rows {
		s.printable.Rows = pos.Row + 1
	}
	if pos.Col+1 > s.printable.Cols {
		s.printable.Cols = pos.Col + 1
	}
}

func (s *Sheet) removeSlot(pos Position) {
	delete(s.cells, pos)
	if pos.Row+1 == s.printable.Rows || pos.Col+1 == s.printable.Cols {
		s.recomputePrintable()
	}
}

func (s *Sheet) recomputePrintable() {
	size := Size{}
	for pos := range s.cells {
		if pos.Row+1 > size.Rows {
			size.Rows = pos.Row + 1
		}
		if pos.Col+1 > size.Cols {
			size.Cols = pos.Col + 1
		}
	}
	s.printable = size
}

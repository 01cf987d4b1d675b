package xlsheet

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// Value is the computed value of a cell: a float64, a string, or a
// FormulaError.
type Value = any

// CellLookup resolves a referenced position to its current value. Absent
// slots must resolve to 0.0.
type CellLookup func(Position) Value

// Formula is a parsed, evaluable cell expression.
type Formula interface {
	// Evaluate computes the formula result: a float64 or a FormulaError.
	Evaluate(lookup CellLookup) Value

	// Expression returns the canonical printed form of the expression,
	// without the leading '='.
	Expression() string

	// ReferencedCells returns the positions the expression references,
	// sorted row-major and deduplicated.
	ReferencedCells() []Position
}

// cellNamePattern matches identifiers that name a cell (e.g. A1, XFD16384).
// Lowercase identifiers are ordinary variables, not cell references.
var cellNamePattern = regexp.MustCompile(`^[A-Z]{1,3}[1-9][0-9]*$`)

type cellRef struct {
	name string
	pos  Position
}

type compiledFormula struct {
	canonical  string
	program    *vm.Program
	refs       []cellRef // deduplicated, sorted row-major
	outOfRange bool      // the expression names a cell beyond the grid bounds
}

// ParseFormula parses and compiles a formula expression (without the leading
// '='). The returned Formula is immutable and safe to share between cells.
func ParseFormula(expression string) (Formula, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse formula %q: %w", expression, err)
	}

	collector := &refCollector{seen: make(map[string]struct{})}
	ast.Walk(&tree.Node, collector)

	// Evaluation failures such as division by zero must surface as formula
	// errors at evaluation, not at compile, so constant folding stays off.
	program, err := expr.Compile(expression,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
		expr.Optimize(false),
	)
	if err != nil {
		return nil, fmt.Errorf("compile formula %q: %w", expression, err)
	}

	refs := collector.refs
	sort.Slice(refs, func(i, j int) bool {
		return comparePositions(refs[i].pos, refs[j].pos) < 0
	})

	return &compiledFormula{
		canonical:  tree.Node.String(),
		program:    program,
		refs:       refs,
		outOfRange: collector.outOfRange,
	}, nil
}

// refCollector walks an expr AST collecting identifiers shaped like cell
// names.
type refCollector struct {
	refs       []cellRef
	seen       map[string]struct{}
	outOfRange bool
}

func (c *refCollector) Visit(node *ast.Node) {
	id, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}
	name := id.Value
	if !cellNamePattern.MatchString(name) {
		return
	}
	if _, dup := c.seen[name]; dup {
		return
	}
	c.seen[name] = struct{}{}

	pos, err := ParsePosition(name)
	if err != nil {
		c.outOfRange = true
		return
	}
	c.refs = append(c.refs, cellRef{name: name, pos: pos})
}

func (f *compiledFormula) Evaluate(lookup CellLookup) Value {
	if f.outOfRange {
		return RefError
	}

	env := make(map[string]any, len(f.refs))
	for _, ref := range f.refs {
		switch v := lookup(ref.pos).(type) {
		case FormulaError:
			return v
		case float64:
			env[ref.name] = v
		case string:
			if v == "" {
				env[ref.name] = 0.0
				continue
			}
			num, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return ValueError
			}
			env[ref.name] = num
		case nil:
			env[ref.name] = 0.0
		default:
			return ValueError
		}
	}

	result, err := expr.Run(f.program, env)
	if err != nil {
		if strings.Contains(err.Error(), "divide by zero") {
			return ArithmeticError
		}
		return ValueError
	}

	num, ok := asNumber(result)
	if !ok {
		return ValueError
	}
	if math.IsInf(num, 0) || math.IsNaN(num) {
		return ArithmeticError
	}
	return num
}

func (f *compiledFormula) Expression() string {
	return f.canonical
}

func (f *compiledFormula) ReferencedCells() []Position {
	cells := make([]Position, len(f.refs))
	for i, ref := range f.refs {
		cells[i] = ref.pos
	}
	return cells
}

// asNumber converts an evaluation result to float64.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/javajack/xlsheet"
)

// REPL holds the state of the interactive session
type REPL struct {
	sheet  *xlsheet.Sheet
	reader *bufio.Reader
}

func main() {
	fmt.Println("xlsheet REPL - Interactive Spreadsheet Demo")
	fmt.Println("Type 'help' for available commands, 'quit' to exit")
	fmt.Println()

	repl := &REPL{
		sheet:  xlsheet.NewSheet(),
		reader: bufio.NewReader(os.Stdin),
	}

	for {
		fmt.Print("xlsheet> ")
		input, err := repl.reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nGoodbye!")
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if !repl.handleCommand(input) {
			break
		}
	}
}

func (r *REPL) handleCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help":
		r.printHelp()

	case "quit", "exit":
		fmt.Println("Goodbye!")
		return false

	case "set":
		r.cmdSet(args, input)

	case "get":
		r.cmdGet(args)

	case "text":
		r.cmdText(args)

	case "clear":
		r.cmdClear(args)

	case "size":
		r.cmdSize()

	case "values":
		r.cmdValues()

	case "texts":
		r.cmdTexts()

	case "save":
		r.cmdSave(args)

	case "load":
		r.cmdLoad(args)

	case "reset":
		r.sheet = xlsheet.NewSheet()
		fmt.Println("Sheet reset")

	default:
		fmt.Printf("Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}

	return true
}

func (r *REPL) printHelp() {
	help := `
Available Commands:
-------------------

CELL OPERATIONS:
  set <cell> <text>       Set cell content (prefix with = for a formula)
  get <cell>              Show the computed value of a cell
  text <cell>             Show the raw text of a cell
  clear <cell>            Clear a cell

SHEET OPERATIONS:
  size                    Show the printable region size
  values                  Print computed values of the printable region
  texts                   Print raw texts of the printable region
  reset                   Discard the sheet and start over

FILE OPERATIONS:
  save <path>             Save the sheet as an xlsx workbook
  load <path>             Load a sheet from an xlsx workbook

OTHER:
  help                    Show this help message
  quit, exit              Exit the REPL
`
	fmt.Println(help)
}

func (r *REPL) cmdSet(args []string, input string) {
	if len(args) < 2 {
		fmt.Println("Usage: set <cell> <text>")
		return
	}

	pos, err := xlsheet.ParsePosition(args[0])
	if err != nil {
		fmt.Printf("Invalid cell: %v\n", err)
		return
	}

	// Preserve the original spacing of the cell text.
	idx := strings.Index(input, args[0])
	text := strings.TrimSpace(input[idx+len(args[0]):])

	if err := r.sheet.SetCell(pos, text); err != nil {
		fmt.Printf("Set error: %v\n", err)
		return
	}
	fmt.Printf("%s = %s\n", pos, formatValue(r.sheet.GetConcreteCell(pos).GetValue()))
}

func (r *REPL) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: get <cell>")
		return
	}

	pos, err := xlsheet.ParsePosition(args[0])
	if err != nil {
		fmt.Printf("Invalid cell: %v\n", err)
		return
	}

	cell, err := r.sheet.GetCell(pos)
	if err != nil {
		fmt.Printf("Get error: %v\n", err)
		return
	}
	if cell == nil {
		fmt.Printf("%s is empty\n", pos)
		return
	}
	fmt.Printf("%s = %s\n", pos, formatValue(cell.GetValue()))
}

func (r *REPL) cmdText(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: text <cell>")
		return
	}

	pos, err := xlsheet.ParsePosition(args[0])
	if err != nil {
		fmt.Printf("Invalid cell: %v\n", err)
		return
	}

	cell, err := r.sheet.GetCell(pos)
	if err != nil {
		fmt.Printf("Get error: %v\n", err)
		return
	}
	if cell == nil {
		fmt.Printf("%s is empty\n", pos)
		return
	}
	fmt.Printf("%s: %q\n", pos, cell.GetText())
}

func (r *REPL) cmdClear(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: clear <cell>")
		return
	}

	pos, err := xlsheet.ParsePosition(args[0])
	if err != nil {
		fmt.Printf("Invalid cell: %v\n", err)
		return
	}

	if err := r.sheet.ClearCell(pos); err != nil {
		fmt.Printf("Clear error: %v\n", err)
		return
	}
	fmt.Printf("%s cleared\n", pos)
}

func (r *REPL) cmdSize() {
	size := r.sheet.GetPrintableSize()
	fmt.Printf("Printable size: %d rows x %d cols\n", size.Rows, size.Cols)
}

func (r *REPL) cmdValues() {
	if err := r.sheet.PrintValues(os.Stdout); err != nil {
		fmt.Printf("Print error: %v\n", err)
	}
}

func (r *REPL) cmdTexts() {
	if err := r.sheet.PrintTexts(os.Stdout); err != nil {
		fmt.Printf("Print error: %v\n", err)
	}
}

func (r *REPL) cmdSave(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: save <path>")
		return
	}

	f, err := os.Create(args[0])
	if err != nil {
		fmt.Printf("Save error: %v\n", err)
		return
	}
	defer f.Close()

	if err := r.sheet.WriteXLSX(f); err != nil {
		fmt.Printf("Save error: %v\n", err)
		return
	}
	fmt.Printf("Saved to %s\n", args[0])
}

func (r *REPL) cmdLoad(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: load <path>")
		return
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Printf("Load error: %v\n", err)
		return
	}
	defer f.Close()

	sheet, err := xlsheet.ReadXLSX(f)
	if err != nil {
		fmt.Printf("Load error: %v\n", err)
		return
	}
	r.sheet = sheet

	size := sheet.GetPrintableSize()
	fmt.Printf("Loaded %s (%d rows x %d cols)\n", args[0], size.Rows, size.Cols)
}

func formatValue(v xlsheet.Value) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case xlsheet.FormulaError:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

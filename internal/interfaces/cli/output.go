package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

const maxCellWidth = 40

// Printer renders command results on stdout.
type Printer struct {
	format string
	w      io.Writer
}

// NewPrinter creates a printer for one of the output formats.
func NewPrinter(format string, w io.Writer) (*Printer, error) {
	switch strings.ToLower(format) {
	case "", FormatTable:
		return &Printer{format: FormatTable, w: w}, nil
	case FormatJSON, FormatYAML:
		return &Printer{format: strings.ToLower(format), w: w}, nil
	default:
		return nil, usageErrorf("unknown output format %q (use table, json or yaml)", format)
	}
}

// Print renders v.
func (p *Printer) Print(v any) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		generic, err := toGeneric(v)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		generic, err := toGeneric(v)
		if err != nil {
			return err
		}
		return p.table(generic)
	}
}

// Message prints a human message, or {"message": ...} in json and yaml.
func (p *Printer) Message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.format == FormatTable {
		_, err := fmt.Fprintln(p.w, msg)
		return err
	}
	return p.Print(map[string]string{"message": msg})
}

// toGeneric converts v to maps and slices through its JSON form, so the
// json tags and custom marshalers (decimals, times) apply to every format.
func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding output: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("encoding output: %w", err)
	}
	return out, nil
}

func (p *Printer) table(v any) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)

	switch val := v.(type) {
	case []any:
		if len(val) == 0 {
			_, err := fmt.Fprintln(p.w, "No records.")
			return err
		}
		rows, ok := asObjects(val)
		if !ok {
			for _, item := range val {
				fmt.Fprintln(tw, cell(item))
			}
			break
		}
		cols := columns(rows)
		fmt.Fprintln(tw, strings.ToUpper(strings.Join(cols, "\t")))
		for _, row := range rows {
			cells := make([]string, len(cols))
			for i, c := range cols {
				cells[i] = cell(row[c])
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	case map[string]any:
		for _, k := range orderedKeys(val) {
			fmt.Fprintf(tw, "%s:\t%s\n", k, cell(val[k]))
		}
	default:
		fmt.Fprintln(tw, cell(val))
	}

	return tw.Flush()
}

func asObjects(items []any) ([]map[string]any, bool) {
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		rows = append(rows, m)
	}
	return rows, true
}

// columns returns the union of keys, "id" and "name" first.
func columns(rows []map[string]any) []string {
	seen := make(map[string]any)
	for _, row := range rows {
		for k, v := range row {
			if _, ok := seen[k]; !ok || seen[k] == nil {
				seen[k] = v
			}
		}
	}
	return orderedKeys(seen)
}

func orderedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	rank := func(k string) int {
		switch k {
		case "id":
			return 0
		case "name", "username", "invoice_no", "day", "resource":
			return 1
		default:
			return 2
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func cell(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(val)
	case []any:
		return fmt.Sprintf("[%d]", len(val))
	case map[string]any:
		// Nested references show their display name.
		for _, k := range []string{"name", "username"} {
			if n, ok := val[k].(string); ok && n != "" {
				s = n
				break
			}
		}
		if s == "" {
			return "{...}"
		}
	default:
		s = fmt.Sprint(val)
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > maxCellWidth {
		s = s[:maxCellWidth-3] + "..."
	}
	return s
}

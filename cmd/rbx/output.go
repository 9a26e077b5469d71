package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// field is one named value of a record. Records keep field order for tables.
type field struct {
	Key   string
	Value any
}

type record []field

// Map returns the record keyed by field name for JSON and YAML output.
func (r record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Key] = f.Value
	}
	return m
}

func maps(records []record) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, r := range records {
		out[i] = r.Map()
	}
	return out
}

// printRecord writes one record as a property table, JSON or YAML.
func printRecord(w io.Writer, format string, r record) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.Map())
	case "yaml":
		return yaml.NewEncoder(w).Encode(r.Map())
	case "table", "":
		table := tablewriter.NewWriter(w)
		table.Header("Property", "Value")
		for _, f := range r {
			if err := table.Append(f.Key, display(f.Value)); err != nil {
				return fmt.Errorf("append %s: %w", f.Key, err)
			}
		}
		return table.Render()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// printRecords writes records as a table with one column per field, JSON or YAML.
func printRecords(w io.Writer, format string, records []record) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(maps(records))
	case "yaml":
		return yaml.NewEncoder(w).Encode(maps(records))
	case "table", "":
		if len(records) == 0 {
			_, err := fmt.Fprintln(w, "No results.")
			return err
		}
		table := tablewriter.NewWriter(w)
		header := make([]any, len(records[0]))
		for i, f := range records[0] {
			header[i] = f.Key
		}
		table.Header(header...)
		for n, r := range records {
			row := make([]string, len(r))
			for i, f := range r {
				row[i] = display(f.Value)
			}
			if err := table.Append(row); err != nil {
				return fmt.Errorf("append row %d: %w", n, err)
			}
		}
		return table.Render()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func display(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(v)
	}
}

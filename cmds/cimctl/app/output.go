package app

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"sigs.k8s.io/yaml"
)

// Output writes a single element or, if list is set, a list of
// elements in the given format. The table rows are used for the
// default format.
func Output(w io.Writer, format string, list bool, elems []any, columns []string, rows [][]string, sortField string) error {
	var data any
	if list {
		data = map[string]any{"items": elems}
	} else if len(elems) > 0 {
		data = elems[0]
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return PrintTable(w, columns, rows, sortField)
	case "json":
		d, err := json.Marshal(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", string(d))
	case "yaml":
		d, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s", string(d))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}

func PrintTable(w io.Writer, columnList []string, fieldList [][]string, sortField string) error {
	if len(fieldList) == 0 {
		fmt.Fprintf(w, "no resource found\n")
		return nil
	}

	sortField = strings.ToUpper(strings.TrimSpace(sortField))
	sort := -1
	if sortField != "" {
		sort = slices.Index(columnList, sortField)
		if sort < 0 {
			return fmt.Errorf("unknown sort field %q", sortField)
		}
	}
	if sort >= 0 {
		slices.SortStableFunc(fieldList, func(a, b []string) int { return strings.Compare(a[sort], b[sort]) })
	}
	max := make([]int, len(columnList))
	for i, s := range columnList {
		max[i] = len(s)
	}
	for _, cols := range fieldList {
		for i, s := range cols {
			if max[i] < len(s) {
				max[i] = len(s)
			}
		}
	}

	f := formatString(max)
	printLine(w, columnList, f)
	for _, cols := range fieldList {
		printLine(w, cols, f)
	}
	return nil
}

func printLine(w io.Writer, cols []string, msg string) {
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = c
	}
	fmt.Fprintf(w, "%s\n", strings.TrimRight(fmt.Sprintf(msg, args...), " "))
}

func formatString(max []int) string {
	msg := ""
	for _, l := range max {
		msg += fmt.Sprintf("%%-%ds ", l)
	}
	return msg[:len(msg)-1]
}

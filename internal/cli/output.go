package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// printField writes one "Label: value" line.
func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s: %s\n", label, value)
}

// printJSON writes v as one compact JSON line.
func printJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printJSONPretty writes v as indented JSON.
func printJSONPretty(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

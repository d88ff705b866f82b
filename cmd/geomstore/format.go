package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// formatGeometryText formats a CLIGeometry as aligned columns.
func formatGeometryText(w io.Writer, g CLIGeometry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tKIND\tCENTER\tBOUNDS")
	fmt.Fprintf(tw, "%s\t%s\t%g,%g\t%g,%g,%g,%g\n",
		g.Key, g.Kind, g.Center.Lat, g.Center.Lon,
		g.Bounds.MinLat, g.Bounds.MinLon, g.Bounds.MaxLat, g.Bounds.MaxLon)
	tw.Flush()
}

// formatKeysText writes one element key per line.
func formatKeysText(w io.Writer, keys []string) {
	for _, k := range keys {
		fmt.Fprintln(w, k)
	}
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(result CLIResult) error {
	w := stdout

	switch v := result.Results.(type) {
	case CLIGeometry:
		formatGeometryText(w, v)
	case []string:
		formatKeysText(w, v)
	case CLIImportSummary:
		fmt.Fprintf(w, "Imported %d geometries from %d file(s)\n", v.Imported, v.Files)
	case CLICleanup:
		fmt.Fprintf(w, "Deleted %d unreferenced geometries\n", v.Deleted)
	case CLIRef:
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.Table, v.QuestType, v.Key)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// outputResult writes result in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

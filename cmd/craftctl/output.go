package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// outputJSON outputs data as pretty-printed JSON to stdout.
func outputJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

// fatalError prints an error respecting --json and exits with code 1.
func fatalError(err error) {
	printError(os.Stderr, err)
	os.Exit(1)
}

// printError renders an error for humans or, under --json, as a JSON object
// so scripted callers never have to parse prose.
func printError(w io.Writer, err error) {
	if jsonOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		_ = encoder.Encode(map[string]string{"error": err.Error()})
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

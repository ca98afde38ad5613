package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// outputJSON pretty-prints v to stdout.
func outputJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

// outputJSONError writes an error object to stderr, naming the error kind
// when one is known.
func outputJSONError(err error, kind string) {
	obj := map[string]string{"error": err.Error()}
	if kind != "" {
		obj["kind"] = kind
	}
	encoder := json.NewEncoder(os.Stderr)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(obj)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// readRecords decodes a JSON array of records from path, or stdin for "-".
func readRecords[T any](path string, stdin io.Reader) ([]T, error) {
	var r io.Reader
	if strings.TrimSpace(path) == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	var records []T
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

package util

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteToFile writes the given lines to a file, separated by newlines.
func WriteToFile(savePath string, content ...string) error {
	singleString := ""
	for _, c := range content {
		singleString = fmt.Sprintf("%s%s\n", singleString, c)
	}
	return os.WriteFile(savePath, []byte(singleString), 0644)
}

// AppendToFile appends the given lines to a file, creating it if needed.
func AppendToFile(savePath string, content ...string) error {
	f, err := os.OpenFile(savePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, s := range content {
		if _, err = f.WriteString(s + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// SaveJSON marshals v and writes it to savePath.
func SaveJSON(savePath string, v interface{}) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", savePath, err)
	}
	return os.WriteFile(savePath, bs, 0644)
}

// AppendJSONLine marshals v and appends it as one line, for jsonl records.
func AppendJSONLine(savePath string, v interface{}) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", savePath, err)
	}
	return AppendToFile(savePath, string(bs))
}

package server

import (
	"os"
	"strings"
)

// readFileReplacing reads a file as UTF-8 text, substituting the replacement
// character for invalid byte sequences so the content always serializes.
func readFileReplacing(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

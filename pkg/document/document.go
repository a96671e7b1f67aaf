package document

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Normalize collapses every run of whitespace, tabs and line breaks
// included, into a single space and trims the result.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Read loads a document from path, or from stdin when path is "-".
func Read(path string, stdin io.Reader) (string, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read document %s: %w", path, err)
	}
	return string(raw), nil
}

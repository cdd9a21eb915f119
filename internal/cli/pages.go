package cli

import (
	"fmt"

	"github.com/mgpai22/pdf2video/internal/script"
)

// reads a script and returns the single #page selected by a number or name
func scriptPage(path, selector string) (*script.Script, int, error) {
	s, err := script.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	indices, err := s.Select(selector)
	if err != nil {
		return nil, 0, err
	}
	if len(indices) != 1 {
		return nil, 0, fmt.Errorf("select exactly one #page, %q selects %d", selector, len(indices))
	}
	return s, indices[0], nil
}

package script

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// longest accepted a-b range
const maxRangeLength = 10000

var (
	numberRegex     = regexp.MustCompile(`^\d+$`)
	numberSpanRegex = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)
	pageNumRegex    = regexp.MustCompile(`^[1-9]\d*$`)
	pageNameRegex   = regexp.MustCompile(`^[a-zA-Z_]+(?:[1-9]\d*)?$`)
	nameSpanRegex   = regexp.MustCompile(`^([a-zA-Z_]+)([1-9]\d*)-([1-9]\d*)$`)
)

// PageRange parses a PDF page list such as "1,3,4-7,1". Pages may repeat.
// "all" (or empty) selects every page, counted with pageCount.
func PageRange(ranges string, pageCount func() (int, error)) ([]int, error) {
	ranges = strings.TrimSpace(ranges)
	if ranges == "" || ranges == "all" {
		n, err := pageCount()
		if err != nil {
			return nil, err
		}
		pages := make([]int, n)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	var pages []int
	for _, comp := range strings.Split(ranges, ",") {
		comp = strings.TrimSpace(comp)
		if numberRegex.MatchString(comp) {
			if n, err := strconv.Atoi(comp); err == nil {
				pages = append(pages, n)
				continue
			}
		}
		if m := numberSpanRegex.FindStringSubmatch(comp); m != nil {
			start, err1 := strconv.Atoi(m[1])
			end, err2 := strconv.Atoi(m[2])
			length := end - start + 1
			if err1 == nil && err2 == nil && length > 0 && length < maxRangeLength {
				for i := start; i <= end; i++ {
					pages = append(pages, i)
				}
				continue
			}
		}
		return nil, fmt.Errorf("invalid page range component: %s", comp)
	}
	return pages, nil
}

// Select parses an --only selector: a comma separated list of 1-based page
// numbers, page names and name ranges like "intro_1-3". Empty or "all"
// selects every page. Returns the sorted page indices.
func (s *Script) Select(only string) ([]int, error) {
	only = strings.TrimSpace(only)
	if only == "" || only == "all" {
		all := make([]int, len(s.Pages))
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	selected := map[int]bool{}
	lookup := func(name string) error {
		idx, ok := s.Names[name]
		if !ok {
			return fmt.Errorf(
				"#page named %q was selected, but there is no #page with that name; available names are: %s",
				name,
				strings.Join(s.names(), ","),
			)
		}
		selected[idx] = true
		return nil
	}

	for _, comp := range strings.Split(only, ",") {
		comp = strings.TrimSpace(comp)
		switch {
		case pageNumRegex.MatchString(comp):
			num, _ := strconv.Atoi(comp)
			if num > len(s.Pages) {
				return nil, fmt.Errorf(
					"#page %d was selected, but only %d #pages exist",
					num,
					len(s.Pages),
				)
			}
			selected[num-1] = true
		case pageNameRegex.MatchString(comp):
			if err := lookup(comp); err != nil {
				return nil, err
			}
		default:
			m := nameSpanRegex.FindStringSubmatch(comp)
			if m == nil {
				return nil, fmt.Errorf("invalid page selector component: %s", comp)
			}
			start, _ := strconv.Atoi(m[2])
			end, _ := strconv.Atoi(m[3])
			length := end - start + 1
			if length <= 0 || length >= maxRangeLength {
				return nil, fmt.Errorf("invalid page selector component: %s", comp)
			}
			for i := start; i <= end; i++ {
				if err := lookup(m[1] + strconv.Itoa(i)); err != nil {
					return nil, err
				}
			}
		}
	}

	indices := make([]int, 0, len(selected))
	for idx := range selected {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}

func (s *Script) names() []string {
	names := make([]string, 0, len(s.Names))
	for name := range s.Names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package subtitle

import (
	"strings"
	"unicode/utf8"
)

// Wrap breaks a caption longer than maxChars into two lines at the word
// boundary closest to the middle. Text that already spans several lines,
// or that fits, is returned unchanged. maxChars <= 0 disables wrapping.
func Wrap(text string, maxChars int) string {
	if maxChars <= 0 || strings.Contains(text, "\n") {
		return text
	}
	runeCount := utf8.RuneCountInString(text)
	if runeCount <= maxChars {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	// find the best split point (closest to middle)
	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := abs(currentLen - middle)
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	return strings.Join(words[:bestSplit], " ") + "\n" +
		strings.Join(words[bestSplit:], " ")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

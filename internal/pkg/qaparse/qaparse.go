// Package qaparse extracts question/answer pairs from generator output
// shaped like "Q1: ...? A1: ... Q2: ...? A2: ...".
package qaparse

import (
	"fmt"
	"regexp"
	"strings"
)

const fallbackCount = 5

type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var questionMarker = regexp.MustCompile(`Q(\d+):`)

// Parse scans raw text for labeled Q/A segments. A segment contributes a
// card when its question ends at the first '?' and is followed by an
// answer carrying the same numeric label; the answer runs up to the next
// "Q<digit>:" marker or end of input. Labels are not checked for
// uniqueness or order. When nothing matches, Parse returns exactly five
// placeholder cards so set creation downstream always has content.
func Parse(raw string) []Card {
	var cards []Card

	markers := questionMarker.FindAllStringSubmatchIndex(raw, -1)
	for i, m := range markers {
		label := raw[m[2]:m[3]]
		end := len(raw)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		segment := raw[m[1]:end]

		pairRe, err := regexp.Compile(`(?s)^\s*(.+?)\?\s*A` + label + `:\s*(.+)$`)
		if err != nil {
			continue
		}
		pair := pairRe.FindStringSubmatch(segment)
		if pair == nil {
			continue
		}
		cards = append(cards, Card{
			Question: strings.TrimSpace(pair[1]),
			Answer:   strings.TrimSpace(pair[2]),
		})
	}

	if len(cards) == 0 {
		return placeholders()
	}
	return cards
}

func placeholders() []Card {
	cards := make([]Card, 0, fallbackCount)
	for i := 1; i <= fallbackCount; i++ {
		cards = append(cards, Card{
			Question: fmt.Sprintf("Sample Question %d", i),
			Answer:   fmt.Sprintf("Sample Answer %d", i),
		})
	}
	return cards
}

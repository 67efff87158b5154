// Package codes builds the human-readable sequential codes stamped on
// requests, quotations and payments: PREFIX + MM + YY + NN.
package codes

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Prefix derives the code prefix from a company name: the first two letters
// for a single-word name, otherwise the first letter of each word, uppercased.
func Prefix(companyName string) string {
	words := strings.Fields(companyName)
	switch len(words) {
	case 0:
		return "XX"
	case 1:
		runes := []rune(words[0])
		if len(runes) == 1 {
			return strings.ToUpper(string(runes[0])) + "X"
		}
		return strings.ToUpper(string(runes[:2]))
	default:
		var b strings.Builder
		for _, w := range words {
			b.WriteRune(unicode.ToUpper([]rune(w)[0]))
		}
		return b.String()
	}
}

// MonthPrefix is the shared stem of every code a company generates within a
// month: PREFIX + MM + YY.
func MonthPrefix(companyName string, now time.Time) string {
	return fmt.Sprintf("%s%02d%02d", Prefix(companyName), int(now.Month()), now.Year()%100)
}

// Next produces the code after last for the given month prefix. An empty
// last means no code exists yet this month and the sequence starts at 01.
func Next(monthPrefix, last string) (string, error) {
	if last == "" {
		return monthPrefix + "01", nil
	}
	if !strings.HasPrefix(last, monthPrefix) {
		return "", fmt.Errorf("codes.Next: code %q does not match prefix %q", last, monthPrefix)
	}
	seq, err := strconv.Atoi(last[len(monthPrefix):])
	if err != nil {
		return "", fmt.Errorf("codes.Next: code %q has a non-numeric sequence: %w", last, err)
	}
	return fmt.Sprintf("%s%02d", monthPrefix, seq+1), nil
}

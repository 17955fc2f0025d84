package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Amounts at or below this are treated as noise (plan numbers, day numbers,
// counts) rather than money.
const minCommitAmount = 100

// defaultCommitYear is assumed when the customer names a date without a year.
const defaultCommitYear = 2025

// Ordered from most to least specific. The first pattern that yields a value
// above the threshold wins.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`₹\s*(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)rs\.?\s*(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)rupees?\s*(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:rupees?|rs\b)`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)`),
}

// ExtractAmount pulls a monetary amount out of free text. Thousands
// separators are stripped first so "₹12,500" parses as 12500. Values of 100
// or less are ignored so that plan numbers and bare day numbers are not
// mistaken for money.
func ExtractAmount(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(text, ",", "")
	for _, pat := range amountPatterns {
		for _, m := range pat.FindAllStringSubmatch(cleaned, -1) {
			amount, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			if amount > minCommitAmount {
				return amount, true
			}
		}
	}
	return 0, false
}

type monthPattern struct {
	name      string
	month     int
	dayBefore *regexp.Regexp
	dayAfter  *regexp.Regexp
}

var monthPatterns = buildMonthPatterns()

func buildMonthPatterns() []monthPattern {
	names := []struct {
		name  string
		month int
	}{
		{"january", 1}, {"february", 2}, {"march", 3}, {"april", 4},
		{"may", 5}, {"june", 6}, {"july", 7}, {"august", 8},
		{"september", 9}, {"october", 10}, {"november", 11}, {"december", 12},
		{"jan", 1}, {"feb", 2}, {"mar", 3}, {"apr", 4}, {"jun", 6},
		{"jul", 7}, {"aug", 8}, {"sept", 9}, {"sep", 9}, {"oct", 10},
		{"nov", 11}, {"dec", 12},
	}
	out := make([]monthPattern, 0, len(names))
	for _, n := range names {
		out = append(out, monthPattern{
			name:      n.name,
			month:     n.month,
			dayBefore: regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)?\s*` + n.name),
			dayAfter:  regexp.MustCompile(n.name + `\s*(\d{1,2})`),
		})
	}
	return out
}

var (
	yearPattern        = regexp.MustCompile(`\b(20\d{2})\b`)
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[-/\s](\d{1,2})(?:[-/\s](\d{4}))?\b`)
	bareDayPattern     = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\b`)
)

// ExtractDate resolves a payment date from free text into DD-MM-YYYY form.
// It understands month names ("5th January"), numeric dates ("15/07" or
// "15-07-2025"), relative phrases ("tomorrow", "next month") and bare day
// numbers ("the 15th"), which resolve to the next occurrence of that day
// relative to now. Dates without an explicit year default to 2025.
func ExtractDate(text string, now time.Time) (string, bool) {
	lower := strings.ToLower(text)

	year := defaultCommitYear
	if ym := yearPattern.FindStringSubmatch(lower); ym != nil {
		if y, err := strconv.Atoi(ym[1]); err == nil {
			year = y
		}
	}

	for _, mp := range monthPatterns {
		if !strings.Contains(lower, mp.name) {
			continue
		}
		if m := mp.dayBefore.FindStringSubmatch(lower); m != nil {
			if day, ok := validDay(m[1]); ok {
				return formatDate(day, mp.month, year), true
			}
		}
		if m := mp.dayAfter.FindStringSubmatch(lower); m != nil {
			if day, ok := validDay(m[1]); ok {
				return formatDate(day, mp.month, year), true
			}
		}
	}

	if m := numericDatePattern.FindStringSubmatch(lower); m != nil {
		day, dayOK := validDay(m[1])
		month, err := strconv.Atoi(m[2])
		if dayOK && err == nil && month >= 1 && month <= 12 {
			y := defaultCommitYear
			if m[3] != "" {
				if parsed, perr := strconv.Atoi(m[3]); perr == nil {
					y = parsed
				}
			}
			return formatDate(day, month, y), true
		}
	}

	switch {
	case strings.Contains(lower, "day after tomorrow"):
		return formatTime(now.AddDate(0, 0, 2)), true
	case strings.Contains(lower, "tomorrow"):
		return formatTime(now.AddDate(0, 0, 1)), true
	case strings.Contains(lower, "next week"), strings.Contains(lower, "week from now"):
		return formatTime(now.AddDate(0, 0, 7)), true
	case strings.Contains(lower, "next month"), strings.Contains(lower, "month from now"):
		month, y := nextMonth(int(now.Month()), now.Year())
		return formatDate(now.Day(), month, y), true
	}

	if !containsMonthKeyword(lower) {
		if m := bareDayPattern.FindStringSubmatch(lower); m != nil {
			if day, ok := validDay(m[1]); ok {
				month, y := int(now.Month()), now.Year()
				if day < now.Day() {
					month, y = nextMonth(month, y)
				}
				return formatDate(day, month, y), true
			}
		}
	}

	return "", false
}

// containsMonthKeyword also blocks on the literal word "month" so that "3
// month plan" is read as a plan reference, never as the 3rd of the month.
func containsMonthKeyword(lower string) bool {
	if strings.Contains(lower, "month") {
		return true
	}
	for _, mp := range monthPatterns {
		if strings.Contains(lower, mp.name) {
			return true
		}
	}
	return false
}

func validDay(s string) (int, bool) {
	day, err := strconv.Atoi(s)
	if err != nil || day < 1 || day > 31 {
		return 0, false
	}
	return day, true
}

func nextMonth(month, year int) (int, int) {
	if month == 12 {
		return 1, year + 1
	}
	return month + 1, year
}

func formatDate(day, month, year int) string {
	return fmt.Sprintf("%02d-%02d-%04d", day, month, year)
}

func formatTime(t time.Time) string {
	return formatDate(t.Day(), int(t.Month()), t.Year())
}

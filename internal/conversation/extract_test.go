package conversation

import (
	"testing"
	"time"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   float64
		wantOK bool
	}{
		{"rupee symbol with separator", "I can pay ₹12,500 next week", 12500, true},
		{"rs prefix", "rs 5000 should be fine", 5000, true},
		{"rs with dot", "Rs. 7,500 by Friday", 7500, true},
		{"rupees word before", "rupees 3000", 3000, true},
		{"rupees word after", "I can manage 2000 rupees", 2000, true},
		{"bare number", "maybe 5000", 5000, true},
		{"decimal", "₹1500.50 works", 1500.50, true},
		{"below threshold", "I can pay 100", 0, false},
		{"plan number ignored", "option 2 please", 0, false},
		{"no number", "I will pay soon", 0, false},
		{"threshold boundary", "101", 101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAmount(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ExtractAmount(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ExtractAmount(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractDate(t *testing.T) {
	june1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	june20 := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	dec15 := time.Date(2025, 12, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		text   string
		now    time.Time
		want   string
		wantOK bool
	}{
		{"month name with ordinal", "I'll pay on 5th January", june1, "05-01-2025", true},
		{"month name day after", "january 5 works", june1, "05-01-2025", true},
		{"month abbreviation", "15 jan is fine", june1, "15-01-2025", true},
		{"explicit year honored", "5th January 2026", june1, "05-01-2026", true},
		{"numeric with year", "15-07-2025", june1, "15-07-2025", true},
		{"numeric slash", "pay on 15/07", june1, "15-07-2025", true},
		{"tomorrow", "I'll pay tomorrow", june1, "02-06-2025", true},
		{"day after tomorrow", "day after tomorrow", june1, "03-06-2025", true},
		{"next week", "sometime next week", june1, "08-06-2025", true},
		{"next month keeps day", "next month", june20, "20-07-2025", true},
		{"next month december rollover", "next month", dec15, "15-01-2026", true},
		{"bare day ahead of today", "the 25th", june20, "25-06-2025", true},
		{"bare day already passed", "the 15th", june20, "15-07-2025", true},
		{"bare day december rollover", "the 10th", dec15, "10-01-2026", true},
		{"invalid month rejected", "45/13", june1, "", false},
		{"no date", "okay sure", june1, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDate(tt.text, tt.now)
			if ok != tt.wantOK {
				t.Fatalf("ExtractDate(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ExtractDate(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

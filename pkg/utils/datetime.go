// Package utils holds small helpers shared by the CLI and the API layer.
package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/ZRnown/ai-fortune-telling/pkg/models"
)

// birthLayouts are the accepted spellings of a birth moment, most precise
// first. Dates without a time default to midnight.
var birthLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15",
	"2006-01-02",
	"2006/01/02 15:04",
	"2006/01/02",
}

// ParseBirthDateTime parses a birth moment string into a BirthInput. Gender
// is not part of the string and is left unset.
func ParseBirthDateTime(s string) (models.BirthInput, error) {
	s = strings.TrimSpace(s)
	for _, layout := range birthLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return models.BirthInput{
			Year:   t.Year(),
			Month:  int(t.Month()),
			Day:    t.Day(),
			Hour:   t.Hour(),
			Minute: t.Minute(),
		}, nil
	}
	return models.BirthInput{}, fmt.Errorf("unrecognized date %q; use YYYY-MM-DD [HH:MM]", s)
}

// FormatBirthInput renders a BirthInput back to the canonical spelling.
func FormatBirthInput(b models.BirthInput) string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", b.Year, b.Month, b.Day, b.Hour, b.Minute)
}

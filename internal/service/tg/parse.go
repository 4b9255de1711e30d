package tg

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"house_admin/internal/model"
)

// intakeKeys maps accepted field names to their canonical key.
var intakeKeys = map[string]string{
	"email":       "email",
	"mail":        "email",
	"house":       "house",
	"house_group": "house",
	"group":       "house",
	"expires":     "expires",
	"expiration":  "expires",
	"registered":  "registered",
	"name":        "name",
	"phone":       "phone",
	"line":        "line",
	"line_id":     "line",
	"package":     "package",
	"price":       "price",
	"channel":     "channel",
}

// ParseIntake reads "key: value" lines into an intake record. A leading
// /intake command word is ignored. Email is required.
func ParseIntake(text string) (model.IntakeRecord, error) {
	var rec model.IntakeRecord
	text = strings.TrimSpace(text)
	if strings.HasPrefix(strings.ToLower(text), "/intake") {
		text = strings.TrimSpace(text[len("/intake"):])
	}

	seen := make(map[string]bool)
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rawKey, value, ok := strings.Cut(line, ":")
		if !ok {
			return rec, fmt.Errorf("line %d: expected \"key: value\", got %q", n+1, line)
		}
		key, known := intakeKeys[strings.ToLower(strings.TrimSpace(rawKey))]
		if !known {
			return rec, fmt.Errorf("line %d: unknown field %q", n+1, strings.TrimSpace(rawKey))
		}
		if seen[key] {
			return rec, fmt.Errorf("line %d: field %q given twice", n+1, key)
		}
		seen[key] = true
		if err := setIntakeField(&rec, key, strings.TrimSpace(value)); err != nil {
			return rec, fmt.Errorf("line %d: %w", n+1, err)
		}
	}

	if rec.Email == "" {
		return rec, fmt.Errorf("email is required")
	}
	return rec, nil
}

func setIntakeField(rec *model.IntakeRecord, key, value string) error {
	switch key {
	case "email":
		if !strings.Contains(value, "@") {
			return fmt.Errorf("invalid email %q", value)
		}
		rec.Email = strings.ToLower(value)
	case "house":
		rec.HouseGroup = value
	case "expires", "registered":
		d, err := model.ParseDate(value)
		if err != nil {
			return err
		}
		if key == "expires" {
			rec.ExpirationDate = d
		} else {
			rec.RegistrationDate = d
		}
	case "name":
		rec.CustomerName = normalizeName(value)
	case "phone":
		rec.PhoneNumber = normalizePhone(value)
	case "line":
		rec.LineID = value
	case "package":
		rec.Package = value
	case "price":
		price, err := strconv.Atoi(extractDigits(value))
		if err != nil {
			return fmt.Errorf("invalid price %q", value)
		}
		rec.PackagePrice = &price
	case "channel":
		ch := model.Channel(strings.ToLower(value))
		if !ch.Valid() {
			return fmt.Errorf("unknown channel %q, use line, facebook, walk-in or other", value)
		}
		rec.Channel = ch
	}
	return nil
}

func normalizeName(name string) string {
	parts := strings.Fields(name)
	for i, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

// normalizePhone keeps digits and a leading plus sign.
func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	digits := extractDigits(s)
	if strings.HasPrefix(s, "+") && digits != "" {
		return "+" + digits
	}
	return digits
}

func extractDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

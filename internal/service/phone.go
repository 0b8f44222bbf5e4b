package service

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/octobees/campsites/api/internal/entity"
)

const defaultPhoneRegion = "US"

func phoneRegion(country entity.Country, fallback string) string {
	if country == entity.CountryCanada {
		return "CA"
	}
	region := strings.ToUpper(strings.TrimSpace(fallback))
	if region == "" {
		return defaultPhoneRegion
	}
	return region
}

// normalizePhone formats raw as E.164 when it parses as a valid number for
// region and returns it trimmed but otherwise untouched when it does not.
func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return raw
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return raw
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

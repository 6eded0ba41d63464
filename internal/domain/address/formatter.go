package address

import "strings"

const fieldSeparator = ", "

// Format builds a single display line from the present fields of a place, in the
// order sub-street, street, locality, administrative area, postal code.
//
// The sub-street (house number) and street are joined by a space; every later
// field follows a comma separator. Blank fields are skipped. A place with no
// usable field yields the empty string.
func Format(p PlaceCandidate) string {
	var b strings.Builder

	subStreet := strings.TrimSpace(p.SubStreet)
	street := strings.TrimSpace(p.Street)

	b.WriteString(subStreet)
	if street != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(street)
	}

	for _, field := range []string{p.Locality, p.AdministrativeArea, p.PostalCode} {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(fieldSeparator)
		}
		b.WriteString(field)
	}

	return b.String()
}

// FormatBatch formats every place in provider order. Coordinates are copied
// unchanged. It never filters, sorts or deduplicates.
func FormatBatch(places []PlaceCandidate) []AddressCandidate {
	candidates := make([]AddressCandidate, len(places))
	for i, p := range places {
		candidates[i] = AddressCandidate{
			DisplayText: Format(p),
			Coordinate:  p.Coordinate,
		}
	}
	return candidates
}

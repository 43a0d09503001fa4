package billlist

import (
	"fmt"
	"time"
)

// French short month names, as the list has always displayed them.
// Note juin and juillet collapse to the same three letters.
var frenchShortMonths = [12]string{
	"Jan", "Fév", "Mar", "Avr", "Mai", "Jui",
	"Jui", "Aoû", "Sep", "Oct", "Nov", "Déc",
}

// FormatDate renders an ISO-8601 date in the short French display form,
// e.g. "2022-07-31" -> "31 Jui. 22". Malformed input returns an error so
// the loader can fall back to the raw string for that record.
func FormatDate(iso string) (string, error) {
	date, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return "", fmt.Errorf("unparseable date %q: %w", iso, err)
	}

	month := frenchShortMonths[date.Month()-1]
	return fmt.Sprintf("%d %s. %02d", date.Day(), month, date.Year()%100), nil
}

package rental

// FilterByYearRange returns the records whose year code lies within the
// inclusive range mapped from [startYear, endYear]. An inverted range matches
// nothing. The input slice is never modified; the result is a fresh slice.
func FilterByYearRange(records []RentalRecord, startYear, endYear int) []RentalRecord {
	if startYear > endYear {
		return []RentalRecord{}
	}

	lo, hi := YearCode(startYear), YearCode(endYear)
	out := make([]RentalRecord, 0, len(records))
	for _, r := range records {
		if r.YearCode >= lo && r.YearCode <= hi {
			out = append(out, r)
		}
	}
	return out
}

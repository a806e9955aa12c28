package domain

import "time"

// UnavailableDate день, полностью закрытый для записи
type UnavailableDate struct {
	Date      time.Time
	Reason    *string
	CreatedAt time.Time
}

// DateOnly отбрасывает время, сохраняя календарную дату
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UnavailableSet множество закрытых дат с ключом YYYY-MM-DD
type UnavailableSet map[string]struct{}

func NewUnavailableSet(dates []time.Time) UnavailableSet {
	set := make(UnavailableSet, len(dates))
	for _, d := range dates {
		set[d.Format(DateFormat)] = struct{}{}
	}
	return set
}

// Contains проверяет календарную дату, время суток игнорируется
func (s UnavailableSet) Contains(date time.Time) bool {
	_, ok := s[date.Format(DateFormat)]
	return ok
}

package entity

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	// DateTimeLayout формат даты, который вводит и видит пользователь
	DateTimeLayout = "15:04 02.01.2006"
	dateLayout     = "2.1.2006"
)

var (
	ErrDateTimeFormat = errors.New("invalid date/time format")
	ErrDateTimeInPast = errors.New("date/time is in the past")
)

var (
	todayWords    = map[string]bool{"сегодня": true, "today": true}
	tomorrowWords = map[string]bool{"завтра": true, "tomorrow": true}
)

// ParseDueTime разбирает ввод пользователя относительно now.
//
// Поддерживаются формы "ЧЧ:ММ ДД.ММ.ГГГГ", "сегодня ЧЧ:ММ", "завтра ЧЧ:ММ"
// и просто "ЧЧ:ММ". Для одного времени выбирается сегодня, если время ещё не
// прошло с учётом grace, иначе завтра. Результат раньше now-grace отклоняется
// с ErrDateTimeInPast. Дата строится в локации now.
func ParseDueTime(input string, now time.Time, grace time.Duration) (time.Time, error) {
	fields := strings.Fields(strings.ToLower(input))

	var (
		clock   string
		date    string
		dayWord string
	)
	for _, f := range fields {
		switch {
		case todayWords[f] || tomorrowWords[f]:
			if dayWord != "" || date != "" {
				return time.Time{}, ErrDateTimeFormat
			}
			dayWord = f
		case strings.Contains(f, ":"):
			if clock != "" {
				return time.Time{}, ErrDateTimeFormat
			}
			clock = f
		case strings.Contains(f, "."):
			if date != "" || dayWord != "" {
				return time.Time{}, ErrDateTimeFormat
			}
			date = f
		default:
			return time.Time{}, ErrDateTimeFormat
		}
	}
	if clock == "" {
		return time.Time{}, ErrDateTimeFormat
	}

	hour, minute, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	loc := now.Location()
	var due time.Time
	switch {
	case date != "":
		d, err := time.ParseInLocation(dateLayout, date, loc)
		if err != nil {
			return time.Time{}, ErrDateTimeFormat
		}
		due = time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
	case tomorrowWords[dayWord]:
		due = atClock(now.AddDate(0, 0, 1), hour, minute)
	case todayWords[dayWord]:
		due = atClock(now, hour, minute)
	default:
		due = InferDay(hour, minute, now, grace)
	}

	if due.Before(now.Add(-grace)) {
		return due, ErrDateTimeInPast
	}
	return due, nil
}

// InferDay выбирает сегодня или завтра для времени без даты.
func InferDay(hour, minute int, now time.Time, grace time.Duration) time.Time {
	today := atClock(now, hour, minute)
	if today.Before(now.Add(-grace)) {
		return atClock(now.AddDate(0, 0, 1), hour, minute)
	}
	return today
}

func atClock(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

func parseClock(s string) (int, int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, ErrDateTimeFormat
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, ErrDateTimeFormat
	}
	minute, err := strconv.Atoi(m)
	if err != nil || len(m) != 2 || minute < 0 || minute > 59 {
		return 0, 0, ErrDateTimeFormat
	}
	return hour, minute, nil
}

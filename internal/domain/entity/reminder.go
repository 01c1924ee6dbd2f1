package entity

import "time"

// Repeat периодичность напоминания
type Repeat string

const (
	RepeatNone    Repeat = ""
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
	RepeatYearly  Repeat = "yearly"
)

const day = 24 * time.Hour

// Фиксированные смещения: месяц и год считаются как 30 и 365 дней,
// без учёта календаря и високосных лет.
var repeatOffsets = map[Repeat]time.Duration{
	RepeatDaily:   day,
	RepeatWeekly:  7 * day,
	RepeatMonthly: 30 * day,
	RepeatYearly:  365 * day,
}

// ParseRepeat приводит сохранённое значение к Repeat. Неизвестные значения
// считаются RepeatNone.
func ParseRepeat(s string) Repeat {
	r := Repeat(s)
	if _, ok := repeatOffsets[r]; ok {
		return r
	}
	return RepeatNone
}

// Next возвращает следующее время срабатывания. ok == false означает,
// что повторов больше нет и напоминание нужно деактивировать.
func (r Repeat) Next(dueAt time.Time) (next time.Time, ok bool) {
	offset, ok := repeatOffsets[r]
	if !ok {
		return time.Time{}, false
	}
	return dueAt.Add(offset), true
}

// Label возвращает подпись периодичности для пользователя.
func (r Repeat) Label() string {
	for _, opt := range RepeatOptions {
		if opt.Repeat == r {
			return opt.Label
		}
	}
	return RepeatOptions[len(RepeatOptions)-1].Label
}

// RepeatOption кнопка выбора периодичности
type RepeatOption struct {
	Label  string
	Repeat Repeat
}

// RepeatOptions варианты периодичности в порядке показа на клавиатуре
var RepeatOptions = []RepeatOption{
	{Label: "Ежедневно", Repeat: RepeatDaily},
	{Label: "Еженедельно", Repeat: RepeatWeekly},
	{Label: "Ежемесячно", Repeat: RepeatMonthly},
	{Label: "Ежегодно", Repeat: RepeatYearly},
	{Label: "Один раз", Repeat: RepeatNone},
}

// RepeatFromLabel ищет периодичность по подписи кнопки.
func RepeatFromLabel(label string) (Repeat, bool) {
	for _, opt := range RepeatOptions {
		if opt.Label == label {
			return opt.Repeat, true
		}
	}
	return RepeatNone, false
}

// Reminder напоминание пользователя
type Reminder struct {
	ID       int64
	UserID   int64
	Text     string
	DueAt    time.Time
	Repeat   Repeat
	IsActive bool
}

package app

import "time"

// Clock источник текущего времени
type Clock interface {
	Now() time.Time
}

// SystemClock системные часы в заданной локации
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

package loan

import (
	clock "time"
)

func dueDate(start clock.Time) clock.Time {
	return start.AddDate(0, 0, 7)
}

func today() clock.Time {
	return clock.Now() // want "time.Now must not be used in package loan"
}

var now = clock.Now // want "time.Now must not be used in package loan"

type fakeClock struct{}

func (fakeClock) Now() clock.Time {
	return clock.Time{}
}

func fromFake() clock.Time {
	return fakeClock{}.Now()
}

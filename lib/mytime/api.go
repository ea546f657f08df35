package mytime

import "time"

// ExampleTime is the fixed clock reading used throughout the tests.
var ExampleTime = time.Date(2023, time.February, 27, 23, 58, 59, 0, time.UTC)

//go:generate mockgen -source=api.go -package mytime -destination nower_mock.go Nower
type Nower interface {
	Now() time.Time
}

type RealNower struct{}

func (n RealNower) Now() time.Time {
	return time.Now().UTC()
}

package app

import "time"

// SetClock replaces the charts service clock in tests.
func (s *ChartsService) SetClock(now func() time.Time) { s.now = now }

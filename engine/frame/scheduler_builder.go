package frame

import "time"

// SchedulerBuilderOption is a functional option for configuring a schedulerImpl.
type SchedulerBuilderOption func(s *schedulerImpl)

// WithClock replaces time.Now as the scheduler's time source.
//
// Parameters:
//   - clock: returns the current time; called once per After and once per Flush
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithClock(clock func() time.Time) SchedulerBuilderOption {
	return func(s *schedulerImpl) {
		if clock != nil {
			s.clock = clock
		}
	}
}

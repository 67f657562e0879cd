package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/chimera-protocol/internal/pkg/clock"
)

type FakeClockTestSuite struct {
	suite.Suite
	start time.Time
	clk   *clock.Fake
}

func (s *FakeClockTestSuite) SetupTest() {
	s.start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.clk = clock.NewFake(s.start)
}

func TestFakeClockSuite(t *testing.T) {
	suite.Run(t, new(FakeClockTestSuite))
}

func (s *FakeClockTestSuite) TestFiresInDeadlineOrder() {
	var fired []string
	s.clk.AfterFunc(2*time.Second, func() { fired = append(fired, "late") })
	s.clk.AfterFunc(time.Second, func() { fired = append(fired, "early") })

	s.clk.Advance(500 * time.Millisecond)
	s.Empty(fired)
	s.Equal(2, s.clk.Pending())

	s.clk.Advance(2 * time.Second)
	s.Equal([]string{"early", "late"}, fired)
	s.Equal(0, s.clk.Pending())
	s.Equal(s.start.Add(2500*time.Millisecond), s.clk.Now())
}

func (s *FakeClockTestSuite) TestStopPreventsCallback() {
	fired := false
	timer := s.clk.AfterFunc(time.Second, func() { fired = true })

	s.True(timer.Stop())
	s.False(timer.Stop())

	s.clk.Advance(time.Minute)
	s.False(fired)
}

func (s *FakeClockTestSuite) TestCallbackCanScheduleWithinWindow() {
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			s.clk.AfterFunc(time.Second, tick)
		}
	}
	s.clk.AfterFunc(time.Second, tick)

	s.clk.Advance(10 * time.Second)
	s.Equal(3, count)
}

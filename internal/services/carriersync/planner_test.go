package carriersync

import (
	"testing"
	"time"

	"github.com/BearBump/ShipBox/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type randMock struct {
	mock.Mock
}

func (m *randMock) Intn(n int) int {
	args := m.Called(n)
	return args.Int(0)
}

type PlannerSuite struct {
	suite.Suite
}

func (s *PlannerSuite) TestBackoffDelay() {
	p := NewPlanner(DefaultPlannerConfig(), &randMock{})
	s.Equal(5*time.Minute, p.BackoffDelay(1))
	s.Equal(15*time.Minute, p.BackoffDelay(2))
	s.Equal(30*time.Minute, p.BackoffDelay(3))
	s.Equal(60*time.Minute, p.BackoffDelay(4))
	s.Equal(60*time.Minute, p.BackoffDelay(100))
}

func (s *PlannerSuite) TestNextCheckDelay_Terminal() {
	p := NewPlanner(DefaultPlannerConfig(), &randMock{})
	s.Equal(365*24*time.Hour, p.NextCheckDelay(models.ShipmentStatusDelivered))
	s.Equal(365*24*time.Hour, p.NextCheckDelay(models.ShipmentStatusReturned))
	s.Equal(365*24*time.Hour, p.NextCheckDelay(models.ShipmentStatusFailedDelivery))
}

func (s *PlannerSuite) TestNextCheckDelay_InTransit_UsesRand() {
	m := &randMock{}
	m.On("Intn", 61).Return(30).Once()

	p := NewPlanner(PlannerConfig{InTransitMinDelay: time.Minute, InTransitMaxDelay: 2 * time.Minute}, m)
	s.Equal(90*time.Second, p.NextCheckDelay(models.ShipmentStatusInTransit))
	m.AssertExpectations(s.T())
}

func (s *PlannerSuite) TestNextCheckDelay_EqualBoundsSkipRand() {
	m := &randMock{}
	p := NewPlanner(DefaultPlannerConfig(), m)
	s.Equal(time.Minute, p.NextCheckDelay(models.ShipmentStatusPickedUp))
	m.AssertNotCalled(s.T(), "Intn", mock.Anything)
}

func (s *PlannerSuite) TestNextCheckDelay_Unknown() {
	p := NewPlanner(PlannerConfig{UnknownDelay: 7 * time.Minute}, &randMock{})
	s.Equal(7*time.Minute, p.NextCheckDelay("lost"))
	s.Equal(7*time.Minute, p.NextCheckDelay(""))
}

func (s *PlannerSuite) TestNextCheckDelay_PendingAndLastMile() {
	m := &randMock{}
	p := NewPlanner(PlannerConfig{
		InTransitMinDelay:   time.Minute,
		InTransitMaxDelay:   time.Hour,
		OutForDeliveryDelay: 30 * time.Second,
	}, m)
	s.Equal(5*time.Minute, p.NextCheckDelay(models.ShipmentStatusPending))
	s.Equal(30*time.Second, p.NextCheckDelay(models.ShipmentStatusOutForDelivery))
	m.AssertNotCalled(s.T(), "Intn", mock.Anything)
}

func (s *PlannerSuite) TestNewPlanner_MaxBelowMinIsClamped() {
	p := NewPlanner(PlannerConfig{InTransitMinDelay: 5 * time.Minute, InTransitMaxDelay: time.Minute}, &randMock{})
	s.Equal(5*time.Minute, p.NextCheckDelay(models.ShipmentStatusInTransit))
}

func TestPlannerSuite(t *testing.T) {
	suite.Run(t, new(PlannerSuite))
}

package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/activity"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

type CheckSLABreachesTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func (s *CheckSLABreachesTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	registerActivities(s.env)
}

func (s *CheckSLABreachesTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func (s *CheckSLABreachesTestSuite) TestNoOverdueStates() {
	s.env.OnActivity("FindOverdueStates", mock.Anything).
		Return([]activity.OverdueState{}, nil)

	s.env.ExecuteWorkflow(CheckSLABreachesWorkflow)
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *CheckSLABreachesTestSuite) TestOverdueStatesAreReportedOnly() {
	overdue := []activity.OverdueState{
		{
			ID:             "state-1",
			Module:         model.ModuleWorkOrders,
			EntityID:       "wo-1",
			OrganizationID: "org-1",
			SLADueAt:       time.Now().Add(-8 * time.Hour),
		},
	}
	s.env.OnActivity("FindOverdueStates", mock.Anything).Return(overdue, nil)

	s.env.ExecuteWorkflow(CheckSLABreachesWorkflow)
	s.True(s.env.IsWorkflowCompleted())
	// Only FindOverdueStates may run; any write activity would trip
	// AssertExpectations in AfterTest.
	s.NoError(s.env.GetWorkflowError())
}

func TestCheckSLABreachesTestSuite(t *testing.T) {
	suite.Run(t, new(CheckSLABreachesTestSuite))
}

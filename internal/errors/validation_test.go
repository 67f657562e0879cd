package errors_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

type ValidationTestSuite struct {
	suite.Suite
}

func TestValidationSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) TestBuilderCollectsFields() {
	vb := errors.NewValidationBuilder()
	vb.RequiredField("starting_map_id").
		Fieldf("turn_budget", "must be at least %d", 1)

	err := vb.Build()
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "starting_map_id: is required")
	s.Contains(err.Error(), "turn_budget: must be at least 1")
	s.NotNil(errors.GetMeta(err)["validation_errors"])
}

func (s *ValidationTestSuite) TestBuilderNoErrors() {
	s.NoError(errors.NewValidationBuilder().Build())
	s.NoError(errors.NewValidationBuilder().BuildWithCode(errors.CodeDataLoss))
}

func (s *ValidationTestSuite) TestBuildWithCode() {
	err := errors.NewValidationBuilder().
		Field("nodes.TP_N1.connections", "references unknown node TP_ZZ").
		BuildWithCode(errors.CodeDataLoss)

	s.True(errors.IsDataIntegrity(err))
}

func (s *ValidationTestSuite) TestValidateHelpers() {
	testCases := []struct {
		name      string
		build     func(vb *errors.ValidationBuilder)
		shouldErr bool
	}{
		{"required present", func(vb *errors.ValidationBuilder) { errors.ValidateRequired("f", "x", vb) }, false},
		{"required blank", func(vb *errors.ValidationBuilder) { errors.ValidateRequired("f", "  ", vb) }, true},
		{"positive duration", func(vb *errors.ValidationBuilder) { errors.ValidatePositive("d", time.Second, vb) }, false},
		{"zero duration", func(vb *errors.ValidationBuilder) { errors.ValidatePositive("d", time.Duration(0), vb) }, true},
		{"enum allowed", func(vb *errors.ValidationBuilder) { errors.ValidateEnum("p", "redis", []string{"redis", "sqlite"}, vb) }, false},
		{"enum rejected", func(vb *errors.ValidationBuilder) { errors.ValidateEnum("p", "mongo", []string{"redis", "sqlite"}, vb) }, true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			vb := errors.NewValidationBuilder()
			tc.build(vb)
			if tc.shouldErr {
				s.Error(vb.Build())
			} else {
				s.NoError(vb.Build())
			}
		})
	}
}

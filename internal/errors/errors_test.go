package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestErrorString() {
	err := errors.NotFound("map not found")
	s.Equal("NOT_FOUND: map not found", err.Error())

	wrapped := errors.Wrap(fmt.Errorf("boom"), "failed to load")
	s.Equal("INTERNAL: failed to load: boom", wrapped.Error())
}

func (s *ErrorsTestSuite) TestWrapPreservesCode() {
	baseErr := errors.QuotaExhausted("image quota exhausted").WithMeta("provider", "openai")
	wrapped := errors.Wrap(baseErr, "avatar generation failed")

	s.Equal(errors.CodeResourceExhausted, wrapped.Code)
	s.Equal("avatar generation failed", wrapped.Message)
	s.Equal(baseErr, wrapped.Unwrap())
	s.True(errors.IsQuotaExhausted(wrapped))
	s.Equal("openai", errors.GetMeta(wrapped)["provider"])
}

func (s *ErrorsTestSuite) TestWrapWithCode() {
	wrapped := errors.WrapWithCode(fmt.Errorf("connection reset"), errors.CodeUnavailable, "text service failed")

	s.Equal(errors.CodeUnavailable, wrapped.Code)
	s.True(errors.IsUnavailable(wrapped))
	s.True(wrapped.Code.Recoverable())
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Nil(errors.Wrap(nil, "should be nil"))
	s.Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should be nil"))
}

func (s *ErrorsTestSuite) TestCodeHelpers() {
	testCases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"data integrity", errors.DataIntegrityf("node %s missing", "TP_X"), errors.IsDataIntegrity},
		{"invalid argument", errors.InvalidArgument("bad target"), errors.IsInvalidArgument},
		{"failed precondition", errors.FailedPrecondition("not your turn"), errors.IsFailedPrecondition},
		{"unavailable", errors.Unavailablef("provider %s down", "gemini"), errors.IsUnavailable},
		{"not found", errors.NotFoundf("slot %s", "a"), errors.IsNotFound},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.True(tc.check(tc.err))
			s.False(errors.IsInternal(tc.err))
		})
	}
}

func (s *ErrorsTestSuite) TestGetCodeAndMessage() {
	s.Equal(errors.CodeOK, errors.GetCode(nil))
	s.Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("plain")))
	s.Equal("plain", errors.GetMessage(fmt.Errorf("plain")))
	s.Equal("bad target", errors.GetMessage(errors.InvalidArgument("bad target")))
	s.Equal("", errors.GetMessage(nil))
}

func (s *ErrorsTestSuite) TestErrorIs() {
	s.True(errors.Is(errors.Wrap(errors.DataIntegrity("a"), "b"), errors.DataIntegrity("other")))
	s.False(errors.Is(errors.InvalidArgument("a"), errors.DataIntegrity("a")))
}

func (s *ErrorsTestSuite) TestGRPCRoundTrip() {
	err := errors.InvalidArgument("target not connected").
		WithMeta("from", "TP_N1").
		WithMeta("to", "TP_N2")

	grpcErr := errors.ToGRPCError(err)
	st, ok := status.FromError(grpcErr)
	s.Require().True(ok)
	s.Equal(codes.InvalidArgument, st.Code())
	s.Equal("target not connected", st.Message())

	back := errors.FromGRPCError(grpcErr)
	s.True(errors.IsInvalidArgument(back))
	s.Equal("TP_N1", errors.GetMeta(back)["from"])
	s.Equal("TP_N2", errors.GetMeta(back)["to"])
}

func (s *ErrorsTestSuite) TestGRPCCodeMapping() {
	testCases := []struct {
		code     errors.Code
		expected codes.Code
	}{
		{errors.CodeNotFound, codes.NotFound},
		{errors.CodeInvalidArgument, codes.InvalidArgument},
		{errors.CodeResourceExhausted, codes.ResourceExhausted},
		{errors.CodeFailedPrecondition, codes.FailedPrecondition},
		{errors.CodeDataLoss, codes.DataLoss},
		{errors.CodeUnavailable, codes.Unavailable},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.expected, tc.code.GRPCCode())
		})
	}
}

func (s *ErrorsTestSuite) TestPlainErrorToGRPC() {
	st, ok := status.FromError(errors.ToGRPCError(fmt.Errorf("plain")))
	s.Require().True(ok)
	s.Equal(codes.Internal, st.Code())
	s.Nil(errors.ToGRPCError(nil))
}

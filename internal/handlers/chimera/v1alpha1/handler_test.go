package v1alpha1_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/chimera-protocol/internal/entities/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/handlers/chimera/v1alpha1"
	orchestrator "github.com/KirkDiggler/chimera-protocol/internal/orchestrators/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/snapshots"
	"github.com/KirkDiggler/chimera-protocol/internal/services/session"
	sessionmock "github.com/KirkDiggler/chimera-protocol/internal/services/session/mock"
	"github.com/KirkDiggler/chimera-protocol/internal/terminal"
)

type HandlerTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *sessionmock.MockService
	handler     *v1alpha1.Handler
	ctx         context.Context

	testSessionID string
}

func (s *HandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = sessionmock.NewMockService(s.ctrl)

	handler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{SessionService: s.mockService})
	s.Require().NoError(err)
	s.handler = handler

	s.ctx = context.Background()
	s.testSessionID = "session_42"
}

func (s *HandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerTestSuite) request(fields map[string]any) *structpb.Struct {
	req, err := structpb.NewStruct(fields)
	s.Require().NoError(err)
	return req
}

func (s *HandlerTestSuite) TestNewHandler_RequiresService() {
	_, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{})
	s.True(errors.IsInvalidArgument(err))

	_, err = v1alpha1.NewHandler(nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *HandlerTestSuite) TestCreateSession() {
	s.Run("passes the autopilot override", func() {
		s.mockService.EXPECT().
			Create(s.ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, in *session.CreateInput) (*session.CreateOutput, error) {
				s.Require().NotNil(in.AutoPilot)
				s.True(*in.AutoPilot)
				return &session.CreateOutput{SessionID: s.testSessionID}, nil
			})

		resp, err := s.handler.CreateSession(s.ctx, s.request(map[string]any{"autopilot": true}))
		s.Require().NoError(err)
		s.Equal(s.testSessionID, resp.GetFields()["session_id"].GetStringValue())
	})

	s.Run("leaves autopilot unset when absent", func() {
		s.mockService.EXPECT().
			Create(s.ctx, &session.CreateInput{}).
			Return(&session.CreateOutput{SessionID: s.testSessionID}, nil)

		_, err := s.handler.CreateSession(s.ctx, s.request(nil))
		s.NoError(err)
	})

	s.Run("maps service errors", func() {
		s.mockService.EXPECT().
			Create(s.ctx, gomock.Any()).
			Return(nil, errors.QuotaExhausted("too many active sessions"))

		_, err := s.handler.CreateSession(s.ctx, s.request(nil))
		s.Equal(codes.ResourceExhausted, status.Code(err))
	})
}

func (s *HandlerTestSuite) TestGetSession() {
	s.Run("requires session_id", func() {
		_, err := s.handler.GetSession(s.ctx, s.request(nil))
		s.Equal(codes.InvalidArgument, status.Code(err))
	})

	s.Run("converts the view", func() {
		state := &chimera.GameState{
			Mode:          chimera.ModeExploration,
			Player:        &chimera.Character{ID: chimera.PlayerCombatantID, Name: "Netrunner"},
			CurrentMapID:  "TP_MAP",
			CurrentNodeID: "TP_N1",
		}
		view := &session.View{
			SessionID: s.testSessionID,
			Mode:      session.HostMode,
			Status: orchestrator.Status{
				SessionID: s.testSessionID,
				Creation:  orchestrator.CreationComplete,
				State:     state,
			},
			Messages: []terminal.Message{{
				ID:        "msg_1",
				Sender:    terminal.SenderDM,
				Text:      "Rain.",
				Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			}},
			Notice: "Waiting on the facilitator.",
		}
		s.mockService.EXPECT().
			Get(s.ctx, &session.GetInput{SessionID: s.testSessionID, AfterMessageID: "msg_0"}).
			Return(&session.GetOutput{View: view}, nil)

		resp, err := s.handler.GetSession(s.ctx, s.request(map[string]any{
			"session_id":       s.testSessionID,
			"after_message_id": "msg_0",
		}))
		s.Require().NoError(err)

		doc := resp.AsMap()
		s.Equal(session.HostMode, doc["mode"])
		s.Equal("Waiting on the facilitator.", doc["notice"])
		s.Equal("CREATION_COMPLETE", doc["status"].(map[string]any)["creation"])

		st := doc["state"].(map[string]any)
		s.Equal("TP_N1", st["current_node_id"])
		s.Equal("EXPLORATION", st["mode"])

		msgs := doc["messages"].([]any)
		s.Require().Len(msgs, 1)
		s.Equal("Rain.", msgs[0].(map[string]any)["text"])
		s.Equal("DM", msgs[0].(map[string]any)["sender"])
	})

	s.Run("not found", func() {
		s.mockService.EXPECT().
			Get(s.ctx, gomock.Any()).
			Return(nil, errors.NotFoundf("session %s not found", "nope"))

		_, err := s.handler.GetSession(s.ctx, s.request(map[string]any{"session_id": "nope"}))
		s.Equal(codes.NotFound, status.Code(err))
	})
}

func (s *HandlerTestSuite) TestSubmit() {
	s.Run("requires input", func() {
		_, err := s.handler.Submit(s.ctx, s.request(map[string]any{"session_id": s.testSessionID}))
		s.Equal(codes.InvalidArgument, status.Code(err))
		s.Contains(status.Convert(err).Message(), "input")
	})

	s.Run("reports refusals", func() {
		s.mockService.EXPECT().
			Submit(s.ctx, &session.SubmitInput{SessionID: s.testSessionID, Input: "look"}).
			Return(&session.SubmitOutput{Notice: "It is not your turn to act."}, nil)

		resp, err := s.handler.Submit(s.ctx, s.request(map[string]any{
			"session_id": s.testSessionID,
			"input":      "look",
		}))
		s.Require().NoError(err)
		s.False(resp.GetFields()["accepted"].GetBoolValue())
		s.Equal("It is not your turn to act.", resp.GetFields()["notice"].GetStringValue())
	})
}

func (s *HandlerTestSuite) TestSetEmergencyStop() {
	s.Run("requires a boolean", func() {
		_, err := s.handler.SetEmergencyStop(s.ctx, s.request(map[string]any{
			"session_id": s.testSessionID,
			"active":     "yes",
		}))
		s.Equal(codes.InvalidArgument, status.Code(err))
	})

	s.Run("forwards the flag", func() {
		s.mockService.EXPECT().
			SetEmergencyStop(s.ctx, &session.SetEmergencyStopInput{SessionID: s.testSessionID, Active: true}).
			Return(&session.SetEmergencyStopOutput{}, nil)

		_, err := s.handler.SetEmergencyStop(s.ctx, s.request(map[string]any{
			"session_id": s.testSessionID,
			"active":     true,
		}))
		s.NoError(err)
	})
}

func (s *HandlerTestSuite) TestStartEncounter() {
	s.Run("requires templates", func() {
		_, err := s.handler.StartEncounter(s.ctx, s.request(map[string]any{"session_id": s.testSessionID}))
		s.Equal(codes.InvalidArgument, status.Code(err))
	})

	s.Run("returns the turn order", func() {
		s.mockService.EXPECT().
			StartEncounter(s.ctx, &session.StartEncounterInput{
				SessionID:   s.testSessionID,
				TemplateIDs: []string{"gutter_ganger"},
			}).
			Return(&session.StartEncounterOutput{
				Rolls: []orchestrator.InitiativeRoll{
					{CombatantID: "player", Roll: 15, Modifier: 3, Total: 18},
					{CombatantID: "npc_1", Roll: 4, Modifier: 1, Total: 5},
				},
				TurnOrder: []string{"player", "npc_1"},
			}, nil)

		resp, err := s.handler.StartEncounter(s.ctx, s.request(map[string]any{
			"session_id":   s.testSessionID,
			"template_ids": []any{"gutter_ganger"},
		}))
		s.Require().NoError(err)

		doc := resp.AsMap()
		s.Equal([]any{"player", "npc_1"}, doc["turn_order"])
		first := doc["rolls"].([]any)[0].(map[string]any)
		s.Equal(float64(18), first["total"])
	})

	s.Run("maps precondition failures", func() {
		s.mockService.EXPECT().
			StartEncounter(s.ctx, gomock.Any()).
			Return(nil, errors.FailedPrecondition("an encounter is already running"))

		_, err := s.handler.StartEncounter(s.ctx, s.request(map[string]any{
			"session_id":   s.testSessionID,
			"template_ids": []any{"gutter_ganger"},
		}))
		s.Equal(codes.FailedPrecondition, status.Code(err))
	})
}

func (s *HandlerTestSuite) TestCompleteObjective() {
	s.mockService.EXPECT().
		CompleteObjective(s.ctx, &session.CompleteObjectiveInput{
			SessionID:      s.testSessionID,
			QuestID:        "establish_foothold",
			ObjectiveIndex: 1,
		}).
		Return(&session.CompleteObjectiveOutput{Quest: chimera.Quest{
			ID:     "establish_foothold",
			Status: chimera.QuestStatusActive,
			Objectives: []chimera.Objective{
				{Description: "Survey the plaza"},
				{Description: "Find a contact", Completed: true},
			},
		}}, nil)

	resp, err := s.handler.CompleteObjective(s.ctx, s.request(map[string]any{
		"session_id":      s.testSessionID,
		"quest_id":        "establish_foothold",
		"objective_index": 1,
	}))
	s.Require().NoError(err)

	quest := resp.AsMap()["quest"].(map[string]any)
	s.Equal("establish_foothold", quest["id"])
	s.Equal(true, quest["objectives"].([]any)[1].(map[string]any)["completed"])
}

func (s *HandlerTestSuite) TestRenderMap() {
	s.mockService.EXPECT().
		RenderMap(s.ctx, &session.RenderMapInput{SessionID: s.testSessionID, Cols: 40, Rows: 2, Zoom: 1.25}).
		Return(&session.RenderMapOutput{MapID: "TP_MAP", MapName: "Tessier Plaza", Lines: []string{"TP_N1--TP_N3", ""}}, nil)

	resp, err := s.handler.RenderMap(s.ctx, s.request(map[string]any{
		"session_id": s.testSessionID,
		"cols":       40,
		"rows":       2,
		"zoom":       1.25,
	}))
	s.Require().NoError(err)
	s.Equal([]any{"TP_N1--TP_N3", ""}, resp.AsMap()["lines"])
}

func (s *HandlerTestSuite) TestSaveAndList() {
	savedAt := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	summary := &snapshots.Summary{Slot: "alpha", SessionID: s.testSessionID, SavedAt: savedAt, Size: 512}

	s.mockService.EXPECT().
		Save(s.ctx, &session.SaveInput{SessionID: s.testSessionID, Slot: "alpha"}).
		Return(&session.SaveOutput{Summary: summary}, nil)
	s.mockService.EXPECT().
		ListSaves(s.ctx, &session.ListSavesInput{}).
		Return(&session.ListSavesOutput{Saves: []*snapshots.Summary{summary}}, nil)

	resp, err := s.handler.SaveSession(s.ctx, s.request(map[string]any{
		"session_id": s.testSessionID,
		"slot":       "alpha",
	}))
	s.Require().NoError(err)
	save := resp.AsMap()["save"].(map[string]any)
	s.Equal("2026-04-01T12:00:00Z", save["saved_at"])
	s.Equal(float64(512), save["size"])

	list, err := s.handler.ListSaves(s.ctx, s.request(nil))
	s.Require().NoError(err)
	s.Len(list.AsMap()["saves"], 1)
}

func (s *HandlerTestSuite) TestLoadSession_CarriesErrorDetails() {
	s.mockService.EXPECT().
		Load(s.ctx, &session.LoadInput{Slot: "broken"}).
		Return(nil, errors.InvalidArgument("malformed snapshot").WithMeta("parse_error", "unexpected EOF"))

	_, err := s.handler.LoadSession(s.ctx, s.request(map[string]any{"slot": "broken"}))
	st := status.Convert(err)
	s.Equal(codes.InvalidArgument, st.Code())

	var info *errdetails.ErrorInfo
	for _, d := range st.Details() {
		if ei, ok := d.(*errdetails.ErrorInfo); ok {
			info = ei
		}
	}
	s.Require().NotNil(info)
	s.Equal("unexpected EOF", info.GetMetadata()["parse_error"])
}

func (s *HandlerTestSuite) TestServiceDesc_OverBufconn() {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	v1alpha1.RegisterSessionServiceServer(srv, s.handler)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	defer func() { _ = conn.Close() }()

	s.mockService.EXPECT().
		Submit(gomock.Any(), &session.SubmitInput{SessionID: s.testSessionID, Input: "MOVE TP_N3"}).
		Return(&session.SubmitOutput{Accepted: true}, nil)

	client := v1alpha1.NewClient(conn)
	out, err := client.Call(s.ctx, v1alpha1.MethodSubmit, map[string]any{
		"session_id": s.testSessionID,
		"input":      "MOVE TP_N3",
	})
	s.Require().NoError(err)
	s.Equal(true, out["accepted"])

	_, err = client.Call(s.ctx, v1alpha1.MethodDeleteSave, nil)
	s.Equal(codes.InvalidArgument, status.Code(err))
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

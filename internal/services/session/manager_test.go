package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/chimera-protocol/internal/clients/ai"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	orchestrator "github.com/KirkDiggler/chimera-protocol/internal/orchestrators/chimera"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/clock"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/idgen"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/maps"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/snapshots"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/templates"
	"github.com/KirkDiggler/chimera-protocol/internal/services/session"
	"github.com/KirkDiggler/chimera-protocol/internal/terminal"
)

const (
	archetypeReply = "Three shells wait in the rain: Netrunner, Street Samurai, Fixer."
	choiceReply    = "I choose the Street Samurai. My chrome is paid off, my debts are not."
	incidentReply  = "The holo-arch dies and a sniper laser paints the flagstones at your feet."
	turnReply      = "The vendor slides a bowl across the counter without being asked."
)

type ManagerTestSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *clock.Fake
	store   *snapshots.InMemoryRepository
	cfg     *session.Config
	manager *session.Manager
}

func (s *ManagerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFake(time.Date(2026, 5, 2, 23, 15, 0, 0, time.UTC))
	s.store = snapshots.NewInMemory(s.clock)

	mapsRepo, err := maps.LoadBuiltin()
	s.Require().NoError(err)
	templatesRepo, err := templates.LoadBuiltin()
	s.Require().NoError(err)

	s.cfg = &session.Config{
		Maps:      mapsRepo,
		Templates: templatesRepo,
		DM:        ai.NewScriptedText(archetypeReply, incidentReply, turnReply),
		PlayerAI:  ai.NewScriptedText(choiceReply),
		Images:    ai.OfflineImages{},
		Store:     s.store,
		Clock:     s.clock,
		IDGen:     idgen.NewSequential("session"),
		Dispatch:  func(f func()) { f() },
	}
	s.manager = s.newManager(nil)
}

func (s *ManagerTestSuite) TearDownTest() {
	s.manager.Shutdown(s.ctx)
}

func (s *ManagerTestSuite) newManager(mutate func(cfg *session.Config)) *session.Manager {
	cfg := *s.cfg
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := session.NewManager(&cfg)
	s.Require().NoError(err)
	return m
}

// createPlayable creates a session and runs character creation to the end
func (s *ManagerTestSuite) createPlayable() string {
	out, err := s.manager.Create(s.ctx, &session.CreateInput{})
	s.Require().NoError(err)

	s.clock.Advance(4 * orchestrator.DefaultStepDelay)
	s.Require().Equal(orchestrator.CreationComplete, s.view(out.SessionID).Status.Creation)
	return out.SessionID
}

func (s *ManagerTestSuite) view(id string) *session.View {
	out, err := s.manager.Get(s.ctx, &session.GetInput{SessionID: id})
	s.Require().NoError(err)
	return out.View
}

func (s *ManagerTestSuite) TestNewManager_ValidatesConfig() {
	_, err := session.NewManager(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = session.NewManager(&session.Config{MaxSessions: -1})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "Store")
	s.Contains(err.Error(), "MaxSessions")
}

func (s *ManagerTestSuite) TestCreate_StartsCreation() {
	out, err := s.manager.Create(s.ctx, &session.CreateInput{})
	s.Require().NoError(err)
	s.Equal("session_1", out.SessionID)

	v := s.view(out.SessionID)
	s.Equal(session.HostMode, v.Mode)
	s.Equal(orchestrator.CreationAwaitingArchetypes, v.Status.Creation)
	s.Require().Len(v.Messages, 1)
	s.Equal(orchestrator.MsgInitialized, v.Messages[0].Text)
}

func (s *ManagerTestSuite) TestCreate_RunsCreationHeadless() {
	id := s.createPlayable()

	v := s.view(id)
	s.Require().NotNil(v.Status.State)
	s.Equal("Street Samurai", v.Status.State.Player.Name)
	s.Equal(orchestrator.DefaultAvatarRef, v.Status.State.Player.Avatar)

	var dm []string
	for _, m := range v.Messages {
		if m.Sender == terminal.SenderDM {
			dm = append(dm, m.Text)
		}
	}
	s.Equal([]string{archetypeReply, incidentReply}, dm)
}

func (s *ManagerTestSuite) TestCreate_SessionsAreIndependent() {
	first := s.createPlayable()
	second, err := s.manager.Create(s.ctx, &session.CreateInput{})
	s.Require().NoError(err)

	s.NotEqual(first, second.SessionID)
	s.Equal(orchestrator.CreationComplete, s.view(first).Status.Creation)
	s.Equal(orchestrator.CreationAwaitingArchetypes, s.view(second.SessionID).Status.Creation)
}

func (s *ManagerTestSuite) TestCreate_MaxSessions() {
	s.manager = s.newManager(func(cfg *session.Config) { cfg.MaxSessions = 1 })

	_, err := s.manager.Create(s.ctx, &session.CreateInput{})
	s.Require().NoError(err)

	_, err = s.manager.Create(s.ctx, &session.CreateInput{})
	s.True(errors.IsQuotaExhausted(err))
}

func (s *ManagerTestSuite) TestGet_Errors() {
	_, err := s.manager.Get(s.ctx, &session.GetInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.manager.Get(s.ctx, &session.GetInput{SessionID: "session_404"})
	s.True(errors.IsNotFound(err))
}

func (s *ManagerTestSuite) TestGet_AfterMessageID() {
	id := s.createPlayable()
	all := s.view(id).Messages
	s.Require().Greater(len(all), 2)

	out, err := s.manager.Get(s.ctx, &session.GetInput{SessionID: id, AfterMessageID: all[1].ID})
	s.Require().NoError(err)
	s.Equal(all[2:], out.View.Messages)
}

func (s *ManagerTestSuite) TestSubmit_RefusedDuringCreation() {
	out, err := s.manager.Create(s.ctx, &session.CreateInput{})
	s.Require().NoError(err)

	res, err := s.manager.Submit(s.ctx, &session.SubmitInput{SessionID: out.SessionID, Input: "look around"})
	s.Require().NoError(err)
	s.False(res.Accepted)
	s.Equal("Character creation in progress. Please wait.", res.Notice)
}

func (s *ManagerTestSuite) TestSubmit_BlankInput() {
	id := s.createPlayable()

	_, err := s.manager.Submit(s.ctx, &session.SubmitInput{SessionID: id, Input: "   "})
	s.True(errors.IsInvalidArgument(err))
}

func (s *ManagerTestSuite) TestSubmit_AcceptedRunsTurn() {
	id := s.createPlayable()

	res, err := s.manager.Submit(s.ctx, &session.SubmitInput{SessionID: id, Input: "order noodles"})
	s.Require().NoError(err)
	s.True(res.Accepted)

	s.clock.Advance(orchestrator.DefaultThinkingDelay)

	v := s.view(id)
	s.Equal(turnReply, v.Status.State.Narrative)
	s.Equal(1, v.Status.State.World.ChimeraTurnCount)
}

func (s *ManagerTestSuite) TestSelectNode_MovesToConnectedNode() {
	id := s.createPlayable()

	_, err := s.manager.SelectNode(s.ctx, &session.SelectNodeInput{SessionID: id, NodeID: "TP_N3"})
	s.Require().NoError(err)
	s.Equal("TP_N3", s.view(id).Status.State.CurrentNodeID)
}

func (s *ManagerTestSuite) TestSelectNode_Rejections() {
	id := s.createPlayable()

	_, err := s.manager.SelectNode(s.ctx, &session.SelectNodeInput{SessionID: id, NodeID: "TP_N2"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.manager.SelectNode(s.ctx, &session.SelectNodeInput{SessionID: id, NodeID: "UL_N1"})
	s.True(errors.IsNotFound(err))

	_, err = s.manager.SelectNode(s.ctx, &session.SelectNodeInput{SessionID: id})
	s.True(errors.IsInvalidArgument(err))

	s.Equal("TP_N1", s.view(id).Status.State.CurrentNodeID)
}

func (s *ManagerTestSuite) TestRenderMap() {
	out, err := s.manager.Create(s.ctx, &session.CreateInput{})
	s.Require().NoError(err)

	before, err := s.manager.RenderMap(s.ctx, &session.RenderMapInput{SessionID: out.SessionID, Cols: 60, Rows: 20})
	s.Require().NoError(err)
	s.Empty(before.MapID)

	s.clock.Advance(4 * orchestrator.DefaultStepDelay)

	after, err := s.manager.RenderMap(s.ctx, &session.RenderMapInput{SessionID: out.SessionID, Cols: 60, Rows: 20})
	s.Require().NoError(err)
	s.Equal(maps.StartMapID, after.MapID)
	s.Equal("Tessier Plaza", after.MapName)
	s.Len(after.Lines, 20)

	_, err = s.manager.RenderMap(s.ctx, &session.RenderMapInput{SessionID: out.SessionID, Cols: 0, Rows: 20})
	s.True(errors.IsInvalidArgument(err))
}

func (s *ManagerTestSuite) TestEmergencyStopAndResume() {
	id := s.createPlayable()

	_, err := s.manager.SetEmergencyStop(s.ctx, &session.SetEmergencyStopInput{SessionID: id, Active: true})
	s.Require().NoError(err)
	s.True(s.view(id).Status.EmergencyStop)

	_, err = s.manager.Resume(s.ctx, &session.ResumeInput{SessionID: id})
	s.True(errors.IsFailedPrecondition(err))

	_, err = s.manager.SetEmergencyStop(s.ctx, &session.SetEmergencyStopInput{SessionID: id, Active: false})
	s.Require().NoError(err)
	_, err = s.manager.Resume(s.ctx, &session.ResumeInput{SessionID: id})
	s.NoError(err)
}

func (s *ManagerTestSuite) TestSaveAndLoadIntoNewSession() {
	id := s.createPlayable()
	_, err := s.manager.SelectNode(s.ctx, &session.SelectNodeInput{SessionID: id, NodeID: "TP_KJ1"})
	s.Require().NoError(err)
	s.clock.Advance(orchestrator.DefaultThinkingDelay)

	saved, err := s.manager.Save(s.ctx, &session.SaveInput{SessionID: id, Slot: "alpha"})
	s.Require().NoError(err)
	s.Equal("alpha", saved.Summary.Slot)
	s.Equal(id, saved.Summary.SessionID)

	list, err := s.manager.ListSaves(s.ctx, &session.ListSavesInput{})
	s.Require().NoError(err)
	s.Require().Len(list.Saves, 1)

	loaded, err := s.manager.Load(s.ctx, &session.LoadInput{Slot: "alpha"})
	s.Require().NoError(err)
	s.NotEqual(id, loaded.SessionID)

	original := s.view(id).Status.State
	restored := s.view(loaded.SessionID).Status
	s.Equal(orchestrator.CreationComplete, restored.Creation)
	s.Equal("TP_KJ1", restored.State.CurrentNodeID)
	s.Equal(original.Narrative, restored.State.Narrative)
	s.Equal(original.Player.Name, restored.State.Player.Name)
}

func (s *ManagerTestSuite) TestLoadIntoExistingSession() {
	id := s.createPlayable()
	_, err := s.manager.Save(s.ctx, &session.SaveInput{SessionID: id, Slot: "checkpoint"})
	s.Require().NoError(err)

	_, err = s.manager.SelectNode(s.ctx, &session.SelectNodeInput{SessionID: id, NodeID: "TP_N3"})
	s.Require().NoError(err)

	out, err := s.manager.Load(s.ctx, &session.LoadInput{SessionID: id, Slot: "checkpoint"})
	s.Require().NoError(err)
	s.Equal(id, out.SessionID)
	s.Equal("TP_N1", s.view(id).Status.State.CurrentNodeID)
}

func (s *ManagerTestSuite) TestSave_Errors() {
	out, err := s.manager.Create(s.ctx, &session.CreateInput{})
	s.Require().NoError(err)

	_, err = s.manager.Save(s.ctx, &session.SaveInput{SessionID: out.SessionID, Slot: "early"})
	s.True(errors.IsFailedPrecondition(err))

	_, err = s.manager.Save(s.ctx, &session.SaveInput{SessionID: out.SessionID, Slot: "bad slot!"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *ManagerTestSuite) TestLoad_Errors() {
	_, err := s.manager.Load(s.ctx, &session.LoadInput{Slot: "missing"})
	s.True(errors.IsNotFound(err))

	_, err = s.store.Save(s.ctx, &snapshots.SaveInput{Slot: "garbage", SessionID: "x", Data: []byte("{not json")})
	s.Require().NoError(err)

	_, err = s.manager.Load(s.ctx, &session.LoadInput{Slot: "garbage"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *ManagerTestSuite) TestDeleteSave() {
	id := s.createPlayable()
	_, err := s.manager.Save(s.ctx, &session.SaveInput{SessionID: id, Slot: "alpha"})
	s.Require().NoError(err)

	_, err = s.manager.DeleteSave(s.ctx, &session.DeleteSaveInput{Slot: "alpha"})
	s.Require().NoError(err)

	_, err = s.manager.DeleteSave(s.ctx, &session.DeleteSaveInput{Slot: "alpha"})
	s.True(errors.IsNotFound(err))
}

func (s *ManagerTestSuite) TestEncounterLifecycle() {
	id := s.createPlayable()

	started, err := s.manager.StartEncounter(s.ctx, &session.StartEncounterInput{SessionID: id})
	s.True(errors.IsInvalidArgument(err))
	s.Nil(started)

	_, err = s.manager.AdvanceTurn(s.ctx, &session.AdvanceTurnInput{SessionID: id})
	s.True(errors.IsFailedPrecondition(err))

	_, err = s.manager.EndEncounter(s.ctx, &session.EndEncounterInput{SessionID: id})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *ManagerTestSuite) TestCompleteObjective() {
	id := s.createPlayable()
	quest := s.view(id).Status.State.Quests[0]

	out, err := s.manager.CompleteObjective(s.ctx, &session.CompleteObjectiveInput{
		SessionID: id,
		QuestID:   quest.ID,
	})
	s.Require().NoError(err)
	s.True(out.Quest.Objectives[0].Completed)
}

func (s *ManagerTestSuite) TestCloseAndShutdown() {
	id := s.createPlayable()

	_, err := s.manager.Close(s.ctx, &session.CloseInput{SessionID: id})
	s.Require().NoError(err)

	_, err = s.manager.Get(s.ctx, &session.GetInput{SessionID: id})
	s.True(errors.IsNotFound(err))

	s.manager.Shutdown(s.ctx)
	_, err = s.manager.Create(s.ctx, &session.CreateInput{})
	s.True(errors.IsUnavailable(err))
}

func TestManagerTestSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

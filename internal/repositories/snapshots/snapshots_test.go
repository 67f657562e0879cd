package snapshots_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/pkg/clock"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/snapshots"
	"github.com/KirkDiggler/chimera-protocol/internal/testutils"
)

// RepositoryTestSuite runs the same behavior checks against every store
type RepositoryTestSuite struct {
	suite.Suite
	ctx   context.Context
	clock *clock.Fake
	repo  snapshots.Repository

	newRepo func(s *RepositoryTestSuite) snapshots.Repository
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFake(time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC))
	s.repo = s.newRepo(s)
}

func (s *RepositoryTestSuite) save(slot string, data string) *snapshots.Summary {
	out, err := s.repo.Save(s.ctx, &snapshots.SaveInput{Slot: slot, SessionID: "session_1", Data: []byte(data)})
	s.Require().NoError(err)
	return out.Summary
}

func (s *RepositoryTestSuite) TestSaveAndLoad() {
	summary := s.save("slot-a", `{"version":1}`)
	s.Equal("slot-a", summary.Slot)
	s.Equal(13, summary.Size)
	s.True(summary.SavedAt.Equal(s.clock.Now()))

	out, err := s.repo.Load(s.ctx, &snapshots.LoadInput{Slot: "slot-a"})
	s.Require().NoError(err)
	s.Equal("session_1", out.Record.SessionID)
	s.Equal([]byte(`{"version":1}`), out.Record.Data)
	s.True(out.Record.SavedAt.Equal(summary.SavedAt))
}

func (s *RepositoryTestSuite) TestSaveOverwrites() {
	s.save("slot-a", "first")
	s.clock.Advance(time.Minute)
	s.save("slot-a", "second")

	out, err := s.repo.Load(s.ctx, &snapshots.LoadInput{Slot: "slot-a"})
	s.Require().NoError(err)
	s.Equal([]byte("second"), out.Record.Data)

	list, err := s.repo.List(s.ctx, &snapshots.ListInput{})
	s.Require().NoError(err)
	s.Len(list.Summaries, 1)
}

func (s *RepositoryTestSuite) TestListMostRecentFirst() {
	s.save("older", "a")
	s.clock.Advance(time.Second)
	s.save("newer", "bb")

	out, err := s.repo.List(s.ctx, &snapshots.ListInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Summaries, 2)
	s.Equal("newer", out.Summaries[0].Slot)
	s.Equal(2, out.Summaries[0].Size)
	s.Equal("older", out.Summaries[1].Slot)
}

func (s *RepositoryTestSuite) TestListEmpty() {
	out, err := s.repo.List(s.ctx, &snapshots.ListInput{})
	s.Require().NoError(err)
	s.Empty(out.Summaries)
}

func (s *RepositoryTestSuite) TestDelete() {
	s.save("slot-a", "x")

	_, err := s.repo.Delete(s.ctx, &snapshots.DeleteInput{Slot: "slot-a"})
	s.Require().NoError(err)

	_, err = s.repo.Load(s.ctx, &snapshots.LoadInput{Slot: "slot-a"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Delete(s.ctx, &snapshots.DeleteInput{Slot: "slot-a"})
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestValidation() {
	testCases := []struct {
		name string
		run  func() error
	}{
		{"nil save", func() error { _, err := s.repo.Save(s.ctx, nil); return err }},
		{"empty slot", func() error {
			_, err := s.repo.Save(s.ctx, &snapshots.SaveInput{Data: []byte("x")})
			return err
		}},
		{"bad slot", func() error {
			_, err := s.repo.Save(s.ctx, &snapshots.SaveInput{Slot: "../etc", Data: []byte("x")})
			return err
		}},
		{"empty data", func() error {
			_, err := s.repo.Save(s.ctx, &snapshots.SaveInput{Slot: "ok"})
			return err
		}},
		{"nil load", func() error { _, err := s.repo.Load(s.ctx, nil); return err }},
		{"nil delete", func() error { _, err := s.repo.Delete(s.ctx, nil); return err }},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.True(errors.IsInvalidArgument(tc.run()))
		})
	}
}

func TestInMemoryRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{newRepo: func(s *RepositoryTestSuite) snapshots.Repository {
		return snapshots.NewInMemory(s.clock)
	}})
}

func TestRedisRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{newRepo: func(s *RepositoryTestSuite) snapshots.Repository {
		client, _ := testutils.CreateTestRedisClient(s.T())
		repo, err := snapshots.NewRedis(&snapshots.RedisConfig{Client: client, Clock: s.clock})
		s.Require().NoError(err)
		return repo
	}})
}

func TestSQLiteRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{newRepo: func(s *RepositoryTestSuite) snapshots.Repository {
		repo, err := snapshots.NewSQLite(context.Background(), &snapshots.SQLiteConfig{
			Path:  filepath.Join(s.T().TempDir(), "snapshots.db"),
			Clock: s.clock,
		})
		s.Require().NoError(err)
		s.T().Cleanup(func() { _ = repo.Close() })
		return repo
	}})
}

func TestRedisRepository_ExpiredSlotsArePruned(t *testing.T) {
	ctx := context.Background()
	fake := clock.NewFake(time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC))
	client, mr := testutils.CreateTestRedisClient(t)

	repo, err := snapshots.NewRedis(&snapshots.RedisConfig{Client: client, Clock: fake, TTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Save(ctx, &snapshots.SaveInput{Slot: "temp", Data: []byte("x")}); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(2 * time.Hour)

	out, err := repo.List(ctx, &snapshots.ListInput{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Summaries) != 0 {
		t.Fatalf("expected expired slot to be pruned, got %d", len(out.Summaries))
	}
	if n := client.ZCard(ctx, "chimera:snapshots").Val(); n != 0 {
		t.Fatalf("expected index to be pruned, got %d entries", n)
	}
}

func TestNewRedis_Validation(t *testing.T) {
	_, err := snapshots.NewRedis(nil)
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	_, err = snapshots.NewRedis(&snapshots.RedisConfig{})
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

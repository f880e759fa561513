package game

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versebattle/internal/model"
	"versebattle/internal/store"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Countdown = 10 * time.Millisecond
	return cfg
}

func newTestService(t *testing.T, cfg Config) (*Service, *memStore) {
	t.Helper()
	ms := newMemStore()
	svc := NewService(ms, newFakeVerseRepo(), nil, cfg)
	t.Cleanup(svc.Close)
	return svc, ms
}

func mustCreate(t *testing.T, svc *Service) *model.RoomState {
	t.Helper()
	room, err := svc.CreateRoom(context.Background(), "p1", "Alice")
	require.NoError(t, err)
	return room
}

func waitForStatus(t *testing.T, svc *Service, code string, want model.RoomStatus) *model.RoomState {
	t.Helper()
	var room *model.RoomState
	require.Eventually(t, func() bool {
		r, err := svc.GetRoom(context.Background(), code)
		if err != nil {
			return false
		}
		room = r
		return r.Status == want
	}, 2*time.Second, 5*time.Millisecond, "room never reached %s", want)
	return room
}

// bothReady drives a fresh two-player room into the playing state.
func bothReady(t *testing.T, svc *Service) *model.RoomState {
	t.Helper()
	ctx := context.Background()
	room := mustCreate(t, svc)
	_, err := svc.JoinRoom(ctx, room.Code, "p2", "Bob")
	require.NoError(t, err)
	_, err = svc.SetReady(ctx, room.Code, "p1", true)
	require.NoError(t, err)
	_, err = svc.SetReady(ctx, room.Code, "p2", true)
	require.NoError(t, err)
	return waitForStatus(t, svc, room.Code, model.RoomPlaying)
}

func submitBest(t *testing.T, svc *Service, code, playerID string) *SubmitResult {
	t.Helper()
	ctx := context.Background()
	room, err := svc.GetRoom(ctx, code)
	require.NoError(t, err)
	require.Equal(t, model.RoomPlaying, room.Status)

	if room.Mode(room.CurrentRound) == model.ModeProgressive {
		require.NotNil(t, room.Progressive)
		res, err := svc.SubmitAnswer(ctx, code, playerID, "", room.Progressive.CorrectWords)
		require.NoError(t, err)
		return res
	}
	res, err := svc.SubmitAnswer(ctx, code, playerID, room.CurrentVerse.Translations["ESV"], nil)
	require.NoError(t, err)
	return res
}

func TestCreateRoom(t *testing.T) {
	svc, _ := newTestService(t, testConfig())
	room := mustCreate(t, svc)

	assert.True(t, ValidCode(room.Code))
	assert.Equal(t, model.RoomWaiting, room.Status)
	assert.Equal(t, "p1", room.HostID)
	assert.Len(t, room.Players, 1)
	assert.Equal(t, 6, room.TotalRounds)
	require.Len(t, room.Verses, 6)
	require.Len(t, room.RoundModes, 6)
	for i := 0; i < 3; i++ {
		assert.Equal(t, model.ModeTyping, room.RoundModes[i])
	}
	for i := 3; i < 6; i++ {
		assert.Equal(t, model.ModeProgressive, room.RoundModes[i])
	}
	// progressive verses drawn in increasing difficulty
	assert.Equal(t, model.DifficultyEasy, room.Verses[3].Difficulty)
	assert.Equal(t, model.DifficultyMedium, room.Verses[4].Difficulty)
	assert.Equal(t, model.DifficultyHard, room.Verses[5].Difficulty)
}

func TestJoinRoom(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testConfig())
	room := mustCreate(t, svc)

	joined, err := svc.JoinRoom(ctx, room.Code, "p2", "Bob")
	require.NoError(t, err)
	assert.Len(t, joined.Players, 2)

	// same id joining again is a no-op
	again, err := svc.JoinRoom(ctx, room.Code, "p2", "Bob")
	require.NoError(t, err)
	assert.Len(t, again.Players, 2)

	// a third player is rejected
	_, err = svc.JoinRoom(ctx, room.Code, "p3", "Carol")
	assert.ErrorIs(t, err, ErrRoomFull)

	// lower-case codes are accepted
	lower, err := svc.GetRoom(ctx, strings.ToLower(room.Code))
	require.NoError(t, err)
	assert.Equal(t, room.Code, lower.Code)

	_, err = svc.JoinRoom(ctx, "ZZZZZZ", "p4", "Dave")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = svc.JoinRoom(ctx, "bad code!", "p4", "Dave")
	assert.ErrorIs(t, err, ErrInvalidRoomCode)
}

func TestJoinRoomInProgress(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testConfig())
	room := bothReady(t, svc)

	_, err := svc.JoinRoom(ctx, room.Code, "p3", "Carol")
	assert.ErrorIs(t, err, ErrGameInProgress)
}

func TestLeaveRoomReassignsHost(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testConfig())
	room := mustCreate(t, svc)
	_, err := svc.JoinRoom(ctx, room.Code, "p2", "Bob")
	require.NoError(t, err)

	require.NoError(t, svc.LeaveRoom(ctx, room.Code, "p1"))

	after, err := svc.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, "p2", after.HostID)
	assert.Len(t, after.Players, 1)
}

func TestLeaveRoomLastPlayerDeletes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testConfig())
	room := mustCreate(t, svc)

	require.NoError(t, svc.LeaveRoom(ctx, room.Code, "p1"))

	_, err := svc.GetRoom(ctx, room.Code)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	// leaving an already-deleted room is still fine
	assert.NoError(t, svc.LeaveRoom(ctx, room.Code, "p1"))
}

func TestReadyStartsCountdownThenPlaying(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testConfig())
	room := mustCreate(t, svc)
	_, err := svc.JoinRoom(ctx, room.Code, "p2", "Bob")
	require.NoError(t, err)

	mid, err := svc.SetReady(ctx, room.Code, "p1", true)
	require.NoError(t, err)
	assert.Equal(t, model.RoomWaiting, mid.Status, "one ready player is not enough")

	both, err := svc.SetReady(ctx, room.Code, "p2", true)
	require.NoError(t, err)
	assert.Equal(t, model.RoomCountdown, both.Status)

	// a duplicate ready press during countdown is absorbed
	_, err = svc.SetReady(ctx, room.Code, "p2", true)
	require.NoError(t, err)

	playing := waitForStatus(t, svc, room.Code, model.RoomPlaying)
	assert.Equal(t, 1, playing.CurrentRound)
	require.NotNil(t, playing.CurrentVerse)
	require.NotNil(t, playing.RoundDeadline)
	require.NotNil(t, playing.GameStartedAt)
	for _, p := range playing.Players {
		assert.Nil(t, p.RoundScore)
		assert.Nil(t, p.RoundFinishedAt)
	}
}

func TestStartPlayingIdempotent(t *testing.T) {
	svc, _ := newTestService(t, testConfig())
	room := bothReady(t, svc)

	// a second, stale countdown firing must not restart the round
	svc.startPlaying(room.Code)

	after, err := svc.GetRoom(context.Background(), room.Code)
	require.NoError(t, err)
	assert.Equal(t, model.RoomPlaying, after.Status)
	assert.Equal(t, 1, after.CurrentRound)
}

func TestSubmitAnswerScoresAndClosesRound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testConfig())
	room := bothReady(t, svc)

	res1 := submitBest(t, svc, room.Code, "p1")
	assert.Equal(t, 100, res1.Score)
	assert.Equal(t, model.RoomPlaying, res1.Room.Status, "round stays open until both submit")

	// resubmission overwrites rather than duplicates
	res1b, err := svc.SubmitAnswer(ctx, room.Code, "p1", "something else entirely", nil)
	require.NoError(t, err)
	assert.Less(t, res1b.Score, 100)

	res2 := submitBest(t, svc, room.Code, "p2")
	require.Equal(t, model.RoomRoundResults, res2.Room.Status)

	snap := res2.Room.RoundResults[1]
	require.NotNil(t, snap)
	assert.NotEmpty(t, snap.VisibleText)
	assert.Len(t, snap.Players, 2)
	assert.Equal(t, res1b.Score, res2.Room.Players["p1"].TotalScore)
	assert.Equal(t, res2.Score, res2.Room.Players["p2"].TotalScore)
	assert.Equal(t, []int{res1b.Score}, res2.Room.Players["p1"].RoundScores)
}

func TestSubmitOutsideActiveRound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testConfig())
	room := mustCreate(t, svc)

	_, err := svc.SubmitAnswer(ctx, room.Code, "p1", "anything", nil)
	assert.ErrorIs(t, err, ErrRoundNotActive)

	_, err = svc.SubmitAnswer(ctx, room.Code, "ghost", "anything", nil)
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestFullGameReachesFinalResults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testConfig())
	room := bothReady(t, svc)

	for round := 1; round <= room.TotalRounds; round++ {
		state, err := svc.GetRoom(ctx, room.Code)
		require.NoError(t, err)
		require.Equal(t, model.RoomPlaying, state.Status)
		require.Equal(t, round, state.CurrentRound)
		if state.Mode(round) == model.ModeProgressive {
			require.NotNil(t, state.Progressive, "round %d", round)
			require.NotEmpty(t, state.Progressive.BlankIndices)
		}

		submitBest(t, svc, room.Code, "p1")
		res := submitBest(t, svc, room.Code, "p2")
		require.Equal(t, model.RoomRoundResults, res.Room.Status)

		next, err := svc.AdvanceRound(ctx, room.Code, "p1")
		require.NoError(t, err)
		if round < room.TotalRounds {
			require.Equal(t, model.RoomPlaying, next.Status)
		} else {
			require.Equal(t, model.RoomFinalResults, next.Status)

			winners := next.Winners()
			require.NotEmpty(t, winners)
			best := winners[0].TotalScore
			for _, p := range next.Players {
				assert.LessOrEqual(t, p.TotalScore, best)
			}
			assert.Len(t, next.RoundResults, room.TotalRounds)
		}
	}
}

func TestLeaveMidRoundClosesRound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testConfig())
	room := bothReady(t, svc)

	res := submitBest(t, svc, room.Code, "p2")
	require.Equal(t, model.RoomPlaying, res.Room.Status)

	// the player who never answered walks out; everyone left has submitted
	require.NoError(t, svc.LeaveRoom(ctx, room.Code, "p1"))

	after, err := svc.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, model.RoomRoundResults, after.Status)
	assert.Equal(t, res.Score, after.Players["p2"].TotalScore)

	snap := after.RoundResults[1]
	require.NotNil(t, snap)
	assert.Len(t, snap.Players, 1)

	// host was reassigned, so the remaining player can move the game on
	next, err := svc.AdvanceRound(ctx, room.Code, "p2")
	require.NoError(t, err)
	assert.Equal(t, 2, next.CurrentRound)
}

func TestProgressiveRoundResultRecordsBlankAnswers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testConfig())
	room := bothReady(t, svc)

	for round := 1; round <= 3; round++ {
		submitBest(t, svc, room.Code, "p1")
		submitBest(t, svc, room.Code, "p2")
		_, err := svc.AdvanceRound(ctx, room.Code, "p1")
		require.NoError(t, err)
	}

	state, err := svc.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	require.Equal(t, model.ModeProgressive, state.Mode(state.CurrentRound))
	require.NotNil(t, state.Progressive)
	want := strings.Join(state.Progressive.CorrectWords, " ")

	submitBest(t, svc, room.Code, "p1")
	res := submitBest(t, svc, room.Code, "p2")
	require.Equal(t, model.RoomRoundResults, res.Room.Status)

	snap := res.Room.RoundResults[4]
	require.NotNil(t, snap)
	assert.Equal(t, want, snap.Players["p1"].Answer)
	assert.Equal(t, want, snap.Players["p2"].Answer)
}

func TestAdvanceRoundHostOnly(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testConfig())
	room := bothReady(t, svc)

	submitBest(t, svc, room.Code, "p1")
	submitBest(t, svc, room.Code, "p2")

	_, err := svc.AdvanceRound(ctx, room.Code, "p2")
	assert.ErrorIs(t, err, ErrNotHost)

	advanced, err := svc.AdvanceRound(ctx, room.Code, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, advanced.CurrentRound)

	// a duplicate advance is absorbed as a no-op
	again, err := svc.AdvanceRound(ctx, room.Code, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, again.CurrentRound)
	assert.Equal(t, model.RoomPlaying, again.Status)
}

func TestDeadlineAutoSubmitsEmptyAnswers(t *testing.T) {
	cfg := testConfig()
	cfg.TypingTimeLimit = 250 * time.Millisecond
	svc, _ := newTestService(t, cfg)
	room := bothReady(t, svc)

	res := submitBest(t, svc, room.Code, "p1")
	require.Equal(t, model.RoomPlaying, res.Room.Status)

	closed := waitForStatus(t, svc, room.Code, model.RoomRoundResults)
	p2 := closed.Players["p2"]
	require.NotNil(t, p2.RoundFinishedAt)
	require.NotNil(t, p2.RoundScore)
	assert.Equal(t, 0, *p2.RoundScore)
	assert.Equal(t, "", p2.RoundAnswer)
	assert.Equal(t, 0, p2.TotalScore)
}

func TestStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	svc, ms := newTestService(t, testConfig())
	room := mustCreate(t, svc)

	ms.mu.Lock()
	ms.fail = errors.New("connection refused")
	ms.mu.Unlock()

	_, err := svc.JoinRoom(ctx, room.Code, "p2", "Bob")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestSubscribeDeliversTransitions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testConfig())
	room := mustCreate(t, svc)

	events, cancel, err := svc.Subscribe(ctx, room.Code)
	require.NoError(t, err)
	defer cancel()

	_, err = svc.JoinRoom(ctx, room.Code, "p2", "Bob")
	require.NoError(t, err)

	select {
	case ev := <-events:
		require.NotNil(t, ev.Room)
		assert.Len(t, ev.Room.Players, 2)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	require.NoError(t, svc.LeaveRoom(ctx, room.Code, "p2"))
	require.NoError(t, svc.LeaveRoom(ctx, room.Code, "p1"))

	deleted := false
	timeout := time.After(time.Second)
	for !deleted {
		select {
		case ev := <-events:
			deleted = ev.Deleted
		case <-timeout:
			t.Fatal("no tombstone delivered")
		}
	}
}

var _ store.RoomStore = (*memStore)(nil)

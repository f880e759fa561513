// Package game owns the room state machine for the two-player recall game:
// waiting -> countdown -> playing -> round_results -> playing ... -> final_results.
//
// Every mutation goes through the store's transactional update, and every
// phase-transition mutator no-ops when the room has already left the source
// phase, so two actors racing to trigger the same transition cannot apply
// it twice.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"versebattle/internal/cache"
	"versebattle/internal/model"
	"versebattle/internal/repository"
	"versebattle/internal/similarity"
	"versebattle/internal/store"
)

const codeAttempts = 10

// Config carries the game timing and round-plan knobs.
type Config struct {
	Countdown            time.Duration
	TypingTimeLimit      time.Duration
	ProgressiveTimeLimit time.Duration
	TypingRounds         int
	ProgressiveRounds    int
	CanonicalTranslation string
	BlankDensities       map[int]float64
}

// DefaultConfig returns the standard 6-round game: three typing rounds,
// then three progressive rounds of increasing difficulty.
func DefaultConfig() Config {
	return Config{
		Countdown:            3 * time.Second,
		TypingTimeLimit:      90 * time.Second,
		ProgressiveTimeLimit: 60 * time.Second,
		TypingRounds:         3,
		ProgressiveRounds:    3,
		CanonicalTranslation: "ESV",
		BlankDensities:       DefaultBlankDensities,
	}
}

// SubmitResult is what the submitting adapter shows its player immediately.
type SubmitResult struct {
	Score       int              `json:"score"`
	Translation string           `json:"translation"`
	Feedback    string           `json:"feedback"`
	Room        *model.RoomState `json:"room"`
}

// Service is the room lifecycle manager shared by all client adapters.
type Service struct {
	rooms      store.RoomStore
	verses     repository.VerseRepo
	verseCache cache.VerseCache
	cfg        Config
	log        *zap.SugaredLogger

	rngMu sync.Mutex
	rng   *rand.Rand

	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

// NewService creates the room lifecycle manager. verseCache may be nil.
func NewService(rooms store.RoomStore, verses repository.VerseRepo, verseCache cache.VerseCache, cfg Config) *Service {
	return &Service{
		rooms:      rooms,
		verses:     verses,
		verseCache: verseCache,
		cfg:        cfg,
		log:        zap.S(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		timers:     make(map[string]*time.Timer),
	}
}

// Config returns the game settings the service was built with.
func (s *Service) Config() Config {
	return s.cfg
}

// Close stops all pending countdown/deadline timers.
func (s *Service) Close() {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	for code, t := range s.timers {
		t.Stop()
		delete(s.timers, code)
	}
}

// CreateRoom allocates a room with a unique code, draws the verses for all
// rounds up front and writes the initial waiting state with the creator as
// sole player and host.
func (s *Service) CreateRoom(ctx context.Context, hostID, hostName string) (*model.RoomState, error) {
	verses, modes, err := s.pickVerses(ctx)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := NewCode()
		if err != nil {
			return nil, err
		}

		room := &model.RoomState{
			Code:         code,
			Status:       model.RoomWaiting,
			Players:      map[string]*model.Player{hostID: newPlayer(hostID, hostName)},
			CurrentRound: 1,
			TotalRounds:  len(modes),
			Verses:       verses,
			RoundModes:   modes,
			CreatedAt:    time.Now(),
			HostID:       hostID,
		}

		err = s.rooms.Create(ctx, room)
		if errors.Is(err, store.ErrRoomExists) {
			continue
		}
		if err != nil {
			return nil, s.storeErr("create room", err)
		}

		s.log.Infow("room created", "room", code, "host", hostID)
		return room, nil
	}
	return nil, fmt.Errorf("no unique room code after %d attempts", codeAttempts)
}

// JoinRoom adds a player to a waiting room. Joining the same room twice
// with the same id is a no-op.
func (s *Service) JoinRoom(ctx context.Context, code, playerID, playerName string) (*model.RoomState, error) {
	code, err := s.checkCode(code)
	if err != nil {
		return nil, err
	}

	room, err := s.rooms.Update(ctx, code, func(r *model.RoomState) error {
		if _, ok := r.Players[playerID]; ok {
			return store.ErrNoChange
		}
		if r.Status != model.RoomWaiting {
			return ErrGameInProgress
		}
		if len(r.Players) >= model.MaxPlayers {
			return ErrRoomFull
		}
		r.Players[playerID] = newPlayer(playerID, playerName)
		return nil
	})
	if err != nil {
		return nil, s.opErr("join room", err)
	}

	s.log.Infow("player joined", "room", code, "player", playerID)
	return room, nil
}

// LeaveRoom removes a player. The last player out deletes the room; a
// departing host hands the room to the remaining player. Shared by the
// explicit leave and the presence-drop path, and idempotent for both.
func (s *Service) LeaveRoom(ctx context.Context, code, playerID string) error {
	code, err := s.checkCode(code)
	if err != nil {
		return err
	}

	room, err := s.rooms.Update(ctx, code, func(r *model.RoomState) error {
		if _, ok := r.Players[playerID]; !ok {
			return store.ErrNoChange
		}
		delete(r.Players, playerID)
		if r.HostID == playerID {
			for id := range r.Players {
				r.HostID = id
				break
			}
		}
		// The departed player may have been the only one still answering;
		// everyone left has submitted, so the round is complete.
		if r.Status == model.RoomPlaying && r.CurrentVerse != nil && r.AllSubmitted() {
			s.finishRound(r)
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return s.opErr("leave room", err)
	}

	if room.Status == model.RoomRoundResults {
		s.stopTimer(code)
	}

	if len(room.Players) == 0 {
		s.stopTimer(code)
		if err := s.rooms.Delete(ctx, code); err != nil {
			return s.storeErr("delete room", err)
		}
		s.log.Infow("room deleted", "room", code)
		return nil
	}

	s.log.Infow("player left", "room", code, "player", playerID)
	return nil
}

// SetReady toggles a player's ready flag. The write that satisfies the
// "both ready" condition also moves the room to countdown; the manager then
// schedules the fixed countdown-to-playing transition.
func (s *Service) SetReady(ctx context.Context, code, playerID string, ready bool) (*model.RoomState, error) {
	code, err := s.checkCode(code)
	if err != nil {
		return nil, err
	}

	toCountdown := false
	room, err := s.rooms.Update(ctx, code, func(r *model.RoomState) error {
		toCountdown = false
		p, ok := r.Players[playerID]
		if !ok {
			return ErrNotInRoom
		}
		if r.Status != model.RoomWaiting {
			// A late ready press during countdown is harmless.
			if r.Status == model.RoomCountdown && ready {
				return store.ErrNoChange
			}
			return ErrGameInProgress
		}
		p.Ready = ready
		if r.AllReady() {
			r.Status = model.RoomCountdown
			toCountdown = true
		}
		return nil
	})
	if err != nil {
		return nil, s.opErr("set ready", err)
	}

	if toCountdown {
		s.log.Infow("countdown started", "room", code)
		s.setTimer(code, s.cfg.Countdown, func() { s.startPlaying(code) })
	}
	return room, nil
}

// startPlaying fires after the countdown: populate round 1 and reset every
// player's round fields. A no-op unless the room is still counting down.
func (s *Service) startPlaying(code string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	room, err := s.rooms.Update(ctx, code, func(r *model.RoomState) error {
		if r.Status != model.RoomCountdown {
			return store.ErrNoChange
		}
		now := time.Now()
		r.GameStartedAt = &now
		return s.beginRound(r, 1)
	})
	if err != nil {
		s.log.Errorw("start playing", "room", code, "err", err)
		return
	}
	s.armDeadline(room)
}

// SubmitAnswer scores and records a player's round submission. Submitting
// twice in the same round overwrites. The write that completes the round
// also folds scores into totals and reveals the round result.
func (s *Service) SubmitAnswer(ctx context.Context, code, playerID, answer string, progressiveAnswers []string) (*SubmitResult, error) {
	code, err := s.checkCode(code)
	if err != nil {
		return nil, err
	}

	var out SubmitResult
	room, err := s.rooms.Update(ctx, code, func(r *model.RoomState) error {
		p, ok := r.Players[playerID]
		if !ok {
			return ErrNotInRoom
		}
		if r.Status != model.RoomPlaying || r.CurrentVerse == nil {
			return ErrRoundNotActive
		}

		var score int
		var translation, feedback string
		if r.Mode(r.CurrentRound) == model.ModeProgressive {
			if r.Progressive == nil {
				return ErrRoundNotActive
			}
			res := similarity.ScoreBlanks(progressiveAnswers, r.Progressive.CorrectWords)
			score, translation, feedback = res.Score, s.cfg.CanonicalTranslation, res.Feedback
			p.ProgressiveAnswers = progressiveAnswers
		} else {
			res := similarity.Score(answer, r.CurrentVerse.Translations)
			score, translation, feedback = res.BestScore, res.BestTranslation, res.Feedback
		}

		now := time.Now()
		p.RoundScore = &score
		p.RoundAnswer = answer
		p.RoundTranslation = translation
		p.RoundFinishedAt = &now
		out = SubmitResult{Score: score, Translation: translation, Feedback: feedback}

		if r.AllSubmitted() {
			s.finishRound(r)
		}
		return nil
	})
	if err != nil {
		return nil, s.opErr("submit answer", err)
	}

	if room.Status == model.RoomRoundResults {
		s.stopTimer(code)
	}
	out.Room = room
	return &out, nil
}

// AdvanceRound moves a room out of round_results: on to the next round, or
// to final_results after the last one. Host only; duplicate calls no-op.
func (s *Service) AdvanceRound(ctx context.Context, code, playerID string) (*model.RoomState, error) {
	code, err := s.checkCode(code)
	if err != nil {
		return nil, err
	}

	room, err := s.rooms.Update(ctx, code, func(r *model.RoomState) error {
		if r.HostID != playerID {
			return ErrNotHost
		}
		if r.Status != model.RoomRoundResults {
			return store.ErrNoChange
		}
		next := r.CurrentRound + 1
		if next > r.TotalRounds {
			r.Status = model.RoomFinalResults
			r.CurrentVerse = nil
			r.Progressive = nil
			r.RoundDeadline = nil
			return nil
		}
		return s.beginRound(r, next)
	})
	if err != nil {
		return nil, s.opErr("advance round", err)
	}

	s.armDeadline(room)
	return room, nil
}

// GetRoom returns the current public snapshot.
func (s *Service) GetRoom(ctx context.Context, code string) (*model.RoomState, error) {
	code, err := s.checkCode(code)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.Get(ctx, code)
	if err != nil {
		return nil, s.opErr("get room", err)
	}
	return room, nil
}

// Subscribe streams room snapshots to an adapter until cancel is called.
func (s *Service) Subscribe(ctx context.Context, code string) (<-chan store.Event, func(), error) {
	code, err := s.checkCode(code)
	if err != nil {
		return nil, nil, err
	}
	return s.rooms.Subscribe(ctx, code)
}

// Verse looks up one catalog entry, memoized through the injected cache.
func (s *Service) Verse(ctx context.Context, id string) (*model.Verse, error) {
	if s.verseCache != nil {
		if v, err := s.verseCache.Get(ctx, id); err == nil && v != nil {
			return v, nil
		}
	}
	v, err := s.verses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("verse catalog: %w", err)
	}
	if v != nil && s.verseCache != nil {
		if err := s.verseCache.Set(ctx, v); err != nil {
			s.log.Warnw("verse cache set", "verse", id, "err", err)
		}
	}
	return v, nil
}

// beginRound populates round n and resets all per-round player state.
func (s *Service) beginRound(r *model.RoomState, n int) error {
	if n > len(r.Verses) {
		return fmt.Errorf("no verse assigned for round %d", n)
	}

	r.Status = model.RoomPlaying
	r.CurrentRound = n
	verse := r.Verses[n-1]
	r.CurrentVerse = &verse
	r.Progressive = nil

	limit := s.cfg.TypingTimeLimit
	if r.Mode(n) == model.ModeProgressive {
		text := verse.TextIn(s.cfg.CanonicalTranslation)
		s.rngMu.Lock()
		r.Progressive = GenerateBlanks(text, n, s.cfg.BlankDensities, s.rng)
		s.rngMu.Unlock()
		limit = s.cfg.ProgressiveTimeLimit
	}

	deadline := time.Now().Add(limit)
	r.RoundDeadline = &deadline

	for _, p := range r.Players {
		p.ResetRound()
	}
	return nil
}

// finishRound closes the active round: fold round scores into totals and
// append the revealed result snapshot.
func (s *Service) finishRound(r *model.RoomState) {
	result := &model.RoundResult{
		VisibleText: r.CurrentVerse.TextIn(s.cfg.CanonicalTranslation),
		Reference:   r.CurrentVerse.Reference,
		Players:     make(map[string]model.PlayerRoundResult, len(r.Players)),
	}

	for id, p := range r.Players {
		score := 0
		if p.RoundScore != nil {
			score = *p.RoundScore
		}
		p.TotalScore += score
		p.RoundScores = append(p.RoundScores, score)

		translation := p.RoundTranslation
		if translation == "" {
			translation = s.cfg.CanonicalTranslation
		}
		answer := p.RoundAnswer
		if answer == "" && len(p.ProgressiveAnswers) > 0 {
			answer = strings.Join(p.ProgressiveAnswers, " ")
		}
		result.Players[id] = model.PlayerRoundResult{
			Answer:      answer,
			Score:       score,
			Translation: translation,
		}
	}

	if r.RoundResults == nil {
		r.RoundResults = make(map[int]*model.RoundResult)
	}
	r.RoundResults[r.CurrentRound] = result
	r.Status = model.RoomRoundResults
	r.RoundDeadline = nil
}

// armDeadline schedules centralized deadline enforcement for the room's
// active round. Safe to call with a room in any phase.
func (s *Service) armDeadline(room *model.RoomState) {
	if room == nil || room.Status != model.RoomPlaying || room.RoundDeadline == nil {
		return
	}
	code, round := room.Code, room.CurrentRound
	s.setTimer(code, time.Until(*room.RoundDeadline), func() {
		s.enforceDeadline(code, round)
	})
}

// enforceDeadline auto-submits an empty answer for every player who has not
// finished the given round by its deadline, then closes the round. No-op if
// the round already ended or the room moved on.
func (s *Service) enforceDeadline(code string, round int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.rooms.Update(ctx, code, func(r *model.RoomState) error {
		if r.Status != model.RoomPlaying || r.CurrentRound != round {
			return store.ErrNoChange
		}
		for _, p := range r.Players {
			if p.RoundFinishedAt != nil {
				continue
			}
			now := time.Now()
			zero := 0
			p.RoundScore = &zero
			p.RoundAnswer = ""
			p.RoundTranslation = s.cfg.CanonicalTranslation
			p.RoundFinishedAt = &now
		}
		s.finishRound(r)
		return nil
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.log.Errorw("deadline enforcement", "room", code, "round", round, "err", err)
		return
	}
	s.log.Infow("round deadline enforced", "room", code, "round", round)
}

// pickVerses draws the typing verses randomly and the progressive verses in
// increasing difficulty: easy, medium, hard.
func (s *Service) pickVerses(ctx context.Context) ([]model.Verse, []model.RoundMode, error) {
	typing, err := s.verses.RandomSample(ctx, s.cfg.TypingRounds)
	if err != nil {
		return nil, nil, fmt.Errorf("verse catalog: %w", err)
	}
	if len(typing) == 0 {
		return nil, nil, fmt.Errorf("verse catalog is empty")
	}

	tiers := []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard}
	var progressive []*model.Verse
	for i := 0; i < s.cfg.ProgressiveRounds; i++ {
		tier := tiers[i%len(tiers)]
		picked, err := s.verses.RandomByDifficulty(ctx, tier, 1)
		if err != nil {
			return nil, nil, fmt.Errorf("verse catalog: %w", err)
		}
		if len(picked) == 0 {
			// Thin catalog: fall back to any verse rather than fail the room.
			picked, err = s.verses.RandomSample(ctx, 1)
			if err != nil || len(picked) == 0 {
				picked = []*model.Verse{typing[0]}
			}
		}
		progressive = append(progressive, picked[0])
	}

	verses := make([]model.Verse, 0, len(typing)+len(progressive))
	modes := make([]model.RoundMode, 0, cap(verses))
	for i := 0; i < s.cfg.TypingRounds && i < len(typing); i++ {
		verses = append(verses, *typing[i])
		modes = append(modes, model.ModeTyping)
	}
	for _, v := range progressive {
		verses = append(verses, *v)
		modes = append(modes, model.ModeProgressive)
	}
	return verses, modes, nil
}

func newPlayer(id, name string) *model.Player {
	return &model.Player{
		ID:       id,
		Name:     name,
		JoinedAt: time.Now(),
	}
}

func (s *Service) checkCode(code string) (string, error) {
	code = NormalizeCode(code)
	if !ValidCode(code) {
		return "", ErrInvalidRoomCode
	}
	return code, nil
}

// opErr maps store errors onto the typed failure taxonomy and passes our
// own sentinels through untouched.
func (s *Service) opErr(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrRoomNotFound
	case errors.Is(err, ErrRoomFull),
		errors.Is(err, ErrGameInProgress),
		errors.Is(err, ErrNotHost),
		errors.Is(err, ErrNotInRoom),
		errors.Is(err, ErrRoundNotActive):
		return err
	default:
		return s.storeErr(op, err)
	}
}

func (s *Service) storeErr(op string, err error) error {
	s.log.Errorw(op, "err", err)
	return fmt.Errorf("%w: %s", ErrStoreUnavailable, op)
}

func (s *Service) setTimer(code string, d time.Duration, fn func()) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if t, ok := s.timers[code]; ok {
		t.Stop()
	}
	s.timers[code] = time.AfterFunc(d, fn)
}

func (s *Service) stopTimer(code string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if t, ok := s.timers[code]; ok {
		t.Stop()
		delete(s.timers, code)
	}
}

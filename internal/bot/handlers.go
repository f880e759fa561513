package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"versebattle/internal/game"
	"versebattle/internal/model"
)

// session is one chat's membership in a room, plus the cursor the
// watcher uses to detect state transitions.
type session struct {
	roomCode string
	playerID string
	cancel   func()
}

type Handler struct {
	bot *tgbotapi.BotAPI
	svc *game.Service
	cfg game.Config
	log *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[int64]*session
}

func NewHandler(bot *tgbotapi.BotAPI, svc *game.Service, log *zap.SugaredLogger) *Handler {
	return &Handler{
		bot:      bot,
		svc:      svc,
		cfg:      svc.Config(),
		log:      log,
		sessions: make(map[int64]*session),
	}
}

// Shutdown stops all room watchers.
func (h *Handler) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for chatID, s := range h.sessions {
		if s.cancel != nil {
			s.cancel()
		}
		delete(h.sessions, chatID)
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			h.sendText(msg.Chat.ID, welcomeMessage())
		case "help":
			h.sendText(msg.Chat.ID, helpMessage())
		case "newgame":
			h.cmdNewGame(ctx, msg)
		case "join":
			h.cmdJoin(ctx, msg)
		case "leave":
			h.cmdLeave(ctx, msg)
		default:
			h.sendText(msg.Chat.ID, "Unknown command. Use /help")
		}
		return
	}

	if msg.Text != "" {
		h.handleAnswer(ctx, msg)
	}
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	h.bot.Request(tgbotapi.NewCallback(cb.ID, ""))

	switch cb.Data {
	case "ready":
		h.cbReady(ctx, cb)
	case "next_round":
		h.cbNextRound(ctx, cb)
	case "leave":
		h.cbLeave(ctx, cb)
	}
}

// === Commands ===

func (h *Handler) cmdNewGame(ctx context.Context, msg *tgbotapi.Message) {
	h.mu.Lock()
	existing := h.sessions[msg.Chat.ID]
	h.mu.Unlock()
	if existing != nil {
		h.sendText(msg.Chat.ID, alreadyInGameMessage(existing.roomCode))
		return
	}

	playerID := telegramPlayerID(msg.From)
	room, err := h.svc.CreateRoom(ctx, playerID, displayName(msg.From))
	if err != nil {
		h.log.Errorw("create room", "error", err)
		h.sendText(msg.Chat.ID, "Error: could not create a room, try again later.")
		return
	}

	h.startSession(msg.Chat.ID, room.Code, playerID)

	reply := tgbotapi.NewMessage(msg.Chat.ID, roomCreatedMessage(room.Code))
	reply.ReplyMarkup = ReadyKeyboard()
	h.bot.Send(reply)
}

func (h *Handler) cmdJoin(ctx context.Context, msg *tgbotapi.Message) {
	h.mu.Lock()
	existing := h.sessions[msg.Chat.ID]
	h.mu.Unlock()
	if existing != nil {
		h.sendText(msg.Chat.ID, alreadyInGameMessage(existing.roomCode))
		return
	}

	code := strings.TrimSpace(msg.CommandArguments())
	if code == "" {
		h.sendText(msg.Chat.ID, "Usage: /join CODE")
		return
	}

	playerID := telegramPlayerID(msg.From)
	room, err := h.svc.JoinRoom(ctx, code, playerID, displayName(msg.From))
	if err != nil {
		h.sendText(msg.Chat.ID, joinErrorText(err))
		return
	}

	h.startSession(msg.Chat.ID, room.Code, playerID)

	hostName := "?"
	if host, ok := room.Players[room.HostID]; ok {
		hostName = host.Name
	}
	reply := tgbotapi.NewMessage(msg.Chat.ID, joinedRoomMessage(room.Code, hostName))
	reply.ReplyMarkup = ReadyKeyboard()
	h.bot.Send(reply)
}

func (h *Handler) cmdLeave(ctx context.Context, msg *tgbotapi.Message) {
	h.leave(ctx, msg.Chat.ID)
}

// === Callbacks ===

func (h *Handler) cbReady(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	s := h.session(cb.Message.Chat.ID)
	if s == nil {
		h.sendText(cb.Message.Chat.ID, notInGameMessage())
		return
	}

	if _, err := h.svc.SetReady(ctx, s.roomCode, s.playerID, true); err != nil {
		h.log.Warnw("set ready", "room", s.roomCode, "error", err)
		return
	}
	h.sendText(cb.Message.Chat.ID, "You're ready! Waiting for your opponent...")
}

func (h *Handler) cbNextRound(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	s := h.session(cb.Message.Chat.ID)
	if s == nil {
		h.sendText(cb.Message.Chat.ID, notInGameMessage())
		return
	}

	if _, err := h.svc.AdvanceRound(ctx, s.roomCode, s.playerID); err != nil {
		if errors.Is(err, game.ErrNotHost) {
			h.answerAlert(cb.ID, "Only the host can start the next round")
			return
		}
		h.log.Warnw("advance round", "room", s.roomCode, "error", err)
	}
}

func (h *Handler) cbLeave(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	h.leave(ctx, cb.Message.Chat.ID)
}

// === Answers ===

func (h *Handler) handleAnswer(ctx context.Context, msg *tgbotapi.Message) {
	s := h.session(msg.Chat.ID)
	if s == nil {
		h.sendText(msg.Chat.ID, notInGameMessage())
		return
	}

	room, err := h.svc.GetRoom(ctx, s.roomCode)
	if err != nil {
		h.sendText(msg.Chat.ID, "Error: could not load the room.")
		return
	}
	if room.Status != model.RoomPlaying {
		h.sendText(msg.Chat.ID, "No active round right now.")
		return
	}

	var result *game.SubmitResult
	if room.Mode(room.CurrentRound) == model.ModeProgressive && room.Progressive != nil {
		answers := parseProgressiveAnswers(msg.Text, len(room.Progressive.BlankIndices))
		result, err = h.svc.SubmitAnswer(ctx, s.roomCode, s.playerID, "", answers)
	} else {
		result, err = h.svc.SubmitAnswer(ctx, s.roomCode, s.playerID, msg.Text, nil)
	}
	if err != nil {
		if errors.Is(err, game.ErrRoundNotActive) {
			h.sendText(msg.Chat.ID, "No active round right now.")
			return
		}
		h.log.Warnw("submit answer", "room", s.roomCode, "error", err)
		h.sendText(msg.Chat.ID, "Error: could not submit your answer.")
		return
	}

	h.sendText(msg.Chat.ID, answerSubmittedMessage(result.Score, result.Feedback, result.Translation))
}

// parseProgressiveAnswers reads "1:word 2:word" style replies. Bare words
// fill the next blank in order, so "word word word" also works.
func parseProgressiveAnswers(text string, n int) []string {
	answers := make([]string, n)
	next := 0
	for _, f := range strings.Fields(text) {
		if i := strings.IndexByte(f, ':'); i > 0 {
			if idx, err := strconv.Atoi(f[:i]); err == nil && idx >= 1 && idx <= n {
				answers[idx-1] = f[i+1:]
				next = idx
				continue
			}
		}
		if next < n {
			answers[next] = f
			next++
		}
	}
	return answers
}

// === Session and room watching ===

func (h *Handler) session(chatID int64) *session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[chatID]
}

func (h *Handler) startSession(chatID int64, roomCode, playerID string) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{roomCode: roomCode, playerID: playerID, cancel: cancel}

	h.mu.Lock()
	h.sessions[chatID] = s
	h.mu.Unlock()

	go h.watchRoom(ctx, chatID, s)
}

func (h *Handler) endSession(chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.sessions[chatID]; ok {
		if s.cancel != nil {
			s.cancel()
		}
		delete(h.sessions, chatID)
	}
}

func (h *Handler) leave(ctx context.Context, chatID int64) {
	s := h.session(chatID)
	if s == nil {
		h.sendText(chatID, notInGameMessage())
		return
	}

	if err := h.svc.LeaveRoom(ctx, s.roomCode, s.playerID); err != nil {
		h.log.Warnw("leave room", "room", s.roomCode, "error", err)
	}
	h.endSession(chatID)
	h.sendText(chatID, "You left the game. Use /newgame to play again!")
}

// watchRoom relays room transitions to the chat until the room is
// deleted or the session ends.
func (h *Handler) watchRoom(ctx context.Context, chatID int64, s *session) {
	events, cancel, err := h.svc.Subscribe(ctx, s.roomCode)
	if err != nil {
		h.log.Errorw("subscribe room", "room", s.roomCode, "error", err)
		return
	}
	defer cancel()

	lastStatus := model.RoomWaiting
	lastRound := 0
	lastResults := 0
	known := make(map[string]string) // playerID -> name

	if room, err := h.svc.GetRoom(ctx, s.roomCode); err == nil {
		lastStatus = room.Status
		lastRound = room.CurrentRound
		for id, p := range room.Players {
			known[id] = p.Name
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Deleted {
				h.sendText(chatID, "The game room was closed.")
				h.endSession(chatID)
				return
			}
			room := ev.Room

			h.announceRoster(chatID, s, room, known)

			if room.Status != lastStatus || room.CurrentRound != lastRound {
				h.announceTransition(chatID, s, room, &lastResults)
			}
			lastStatus = room.Status
			lastRound = room.CurrentRound
		}
	}
}

func (h *Handler) announceRoster(chatID int64, s *session, room *model.RoomState, known map[string]string) {
	for id, p := range room.Players {
		if _, ok := known[id]; !ok {
			known[id] = p.Name
			if id != s.playerID {
				h.sendText(chatID, playerJoinedMessage(p.Name))
			}
		}
	}
	for id, name := range known {
		if _, ok := room.Players[id]; !ok {
			delete(known, id)
			if id != s.playerID {
				h.sendText(chatID, playerLeftMessage(name))
			}
		}
	}
}

func (h *Handler) announceTransition(chatID int64, s *session, room *model.RoomState, lastResults *int) {
	switch room.Status {
	case model.RoomCountdown:
		h.sendText(chatID, countdownMessage(int(h.cfg.Countdown.Seconds())))

	case model.RoomPlaying:
		if room.CurrentVerse == nil {
			return
		}
		if room.Mode(room.CurrentRound) == model.ModeProgressive && room.Progressive != nil {
			h.sendText(chatID, progressiveRoundMessage(room, h.cfg.CanonicalTranslation,
				int(h.cfg.ProgressiveTimeLimit.Seconds())))
		} else {
			h.sendText(chatID, typingRoundMessage(room, int(h.cfg.TypingTimeLimit.Seconds())))
		}

	case model.RoomRoundResults:
		if *lastResults == room.CurrentRound {
			return
		}
		*lastResults = room.CurrentRound
		reply := tgbotapi.NewMessage(chatID, roundResultsMessage(room))
		if s.playerID == room.HostID {
			reply.ReplyMarkup = NextRoundKeyboard()
		}
		h.bot.Send(reply)

	case model.RoomFinalResults:
		reply := tgbotapi.NewMessage(chatID, finalResultsMessage(room))
		reply.ReplyMarkup = FinalKeyboard()
		h.bot.Send(reply)
	}
}

// === Helpers ===

func (h *Handler) sendText(chatID int64, text string) {
	h.bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) answerAlert(callbackID, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	callback.ShowAlert = true
	h.bot.Request(callback)
}

func telegramPlayerID(u *tgbotapi.User) string {
	return fmt.Sprintf("tg_%d", u.ID)
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func joinErrorText(err error) string {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		return "Room not found. Check the code and try again."
	case errors.Is(err, game.ErrInvalidRoomCode):
		return "That doesn't look like a room code. Codes are 6 letters/digits."
	case errors.Is(err, game.ErrRoomFull):
		return "That room is already full."
	case errors.Is(err, game.ErrGameInProgress):
		return "That game has already started."
	default:
		return "Error: could not join the room, try again later."
	}
}

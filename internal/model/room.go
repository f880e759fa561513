package model

import "time"

type RoomStatus string

const (
	RoomWaiting      RoomStatus = "waiting"
	RoomCountdown    RoomStatus = "countdown"
	RoomPlaying      RoomStatus = "playing"
	RoomRoundResults RoomStatus = "round_results"
	RoomFinalResults RoomStatus = "final_results"
)

// RoundMode selects how a round is answered
type RoundMode string

const (
	ModeTyping      RoundMode = "typing"      // reproduce the full verse
	ModeProgressive RoundMode = "progressive" // fill in blanked words
)

// MaxPlayers is the hard membership cap for a room.
const MaxPlayers = 2

// ProgressiveRoundData holds the blanks for the current progressive round.
// Recomputed fresh every time a progressive round starts.
type ProgressiveRoundData struct {
	BlankIndices    []int    `json:"blankIndices"`
	BlankPercentage int      `json:"blankPercentage"`
	CorrectWords    []string `json:"correctWords"`
}

// Player is a participant in a room
type Player struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Ready              bool       `json:"ready"`
	TotalScore         int        `json:"totalScore"`
	RoundScore         *int       `json:"roundScore,omitempty"`
	RoundAnswer        string     `json:"roundAnswer,omitempty"`
	RoundTranslation   string     `json:"roundTranslation,omitempty"`
	RoundFinishedAt    *time.Time `json:"roundFinishedAt,omitempty"`
	RoundScores        []int      `json:"roundScores,omitempty"`
	ProgressiveAnswers []string   `json:"progressiveAnswers,omitempty"`
	JoinedAt           time.Time  `json:"joinedAt"`
}

// ResetRound clears the per-round fields before a new round starts.
func (p *Player) ResetRound() {
	p.RoundScore = nil
	p.RoundAnswer = ""
	p.RoundTranslation = ""
	p.RoundFinishedAt = nil
	p.ProgressiveAnswers = nil
}

// PlayerRoundResult is one player's line in a round snapshot
type PlayerRoundResult struct {
	Answer      string `json:"answer"`
	Score       int    `json:"score"`
	Translation string `json:"translation"`
}

// RoundResult is the append-only snapshot recorded when a round closes
type RoundResult struct {
	VisibleText string                       `json:"visibleText"`
	Reference   string                       `json:"reference"`
	Players     map[string]PlayerRoundResult `json:"players"`
}

// RoomState is the aggregate root for one two-player game session.
type RoomState struct {
	Code          string                `json:"code"`
	Status        RoomStatus            `json:"status"`
	Players       map[string]*Player    `json:"players"`
	CurrentRound  int                   `json:"currentRound"`
	TotalRounds   int                   `json:"totalRounds"`
	Verses        []Verse               `json:"verses"`
	RoundModes    []RoundMode           `json:"roundModes"`
	CurrentVerse  *Verse                `json:"currentVerse,omitempty"`
	Progressive   *ProgressiveRoundData `json:"progressiveData,omitempty"`
	RoundResults  map[int]*RoundResult  `json:"roundResults,omitempty"`
	RoundDeadline *time.Time            `json:"roundDeadline,omitempty"`
	GameStartedAt *time.Time            `json:"gameStartedAt,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	HostID        string                `json:"hostId"`
}

// Mode returns the round mode for the given 1-based round number.
func (r *RoomState) Mode(round int) RoundMode {
	if round < 1 || round > len(r.RoundModes) {
		return ModeTyping
	}
	return r.RoundModes[round-1]
}

// AllReady reports whether the room is full and every player is ready.
func (r *RoomState) AllReady() bool {
	if len(r.Players) < MaxPlayers {
		return false
	}
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// AllSubmitted reports whether every current player has finished the round.
func (r *RoomState) AllSubmitted() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if p.RoundFinishedAt == nil {
			return false
		}
	}
	return true
}

// Winners returns the player(s) with the maximum cumulative score. Ties
// return every tied player.
func (r *RoomState) Winners() []*Player {
	var winners []*Player
	best := 0
	for _, p := range r.Players {
		switch {
		case len(winners) == 0 || p.TotalScore > best:
			winners = []*Player{p}
			best = p.TotalScore
		case p.TotalScore == best:
			winners = append(winners, p)
		}
	}
	return winners
}

package bot

import (
	"fmt"
	"sort"
	"strings"

	"versebattle/internal/model"
)

func welcomeMessage() string {
	return `Welcome to Scripture Memory Challenge!

Test your Bible memory skills against a friend in this 6-round game.

Commands:
/newgame - Create a new game room
/join <CODE> - Join an existing room
/leave - Leave current game
/help - Show this help message

Ready to play? Use /newgame to create a room and share the code with a friend!`
}

func helpMessage() string {
	return `Scripture Memory Challenge - Help

How to Play:
1. Create a game with /newgame
2. Share the room code with a friend
3. Both players tap "I'm Ready"
4. Race to type Bible verses from memory!

Game Format:
- 6 rounds total
- Rounds 1-3: Type the full verse
- Rounds 4-6: Fill in the blanks (30%, 50%, 70%)

Scoring:
- Points based on accuracy (0-100%)
- Best translation match is used
- Higher total score wins!

Commands:
/newgame - Create a new room
/join CODE - Join with room code
/leave - Leave current game`
}

func roomCreatedMessage(roomCode string) string {
	return fmt.Sprintf(`Game room created!

Room Code: %s

Share this code with a friend - they can join with:
/join %s

Waiting for opponent to join...`, roomCode, roomCode)
}

func joinedRoomMessage(roomCode, hostName string) string {
	return fmt.Sprintf(`Joined room %s!

Host: %s

Tap "I'm Ready" when you're ready to play!`, roomCode, hostName)
}

func playerJoinedMessage(playerName string) string {
	return playerName + " has joined the game!"
}

func playerLeftMessage(playerName string) string {
	return playerName + " has left the game."
}

func countdownMessage(seconds int) string {
	return fmt.Sprintf("Both ready! Starting in %d...", seconds)
}

func typingRoundMessage(room *model.RoomState, timeLimit int) string {
	verse := room.CurrentVerse
	var b strings.Builder
	fmt.Fprintf(&b, "Round %d/%d - Type Full Verse\n\nReference: %s",
		room.CurrentRound, room.TotalRounds, verse.Reference)

	if verse.Before != nil {
		fmt.Fprintf(&b, "\n\nContext before:\n%q", verse.Before.Text)
	}

	b.WriteString("\n\nTYPE THIS VERSE FROM MEMORY!")

	if verse.After != nil {
		fmt.Fprintf(&b, "\n\nContext after:\n%q", verse.After.Text)
	}

	fmt.Fprintf(&b, "\n\nTime: %d seconds\nReply with your answer!", timeLimit)
	return b.String()
}

func progressiveRoundMessage(room *model.RoomState, canonical string, timeLimit int) string {
	verse := room.CurrentVerse
	data := room.Progressive

	words := strings.Fields(verse.TextIn(canonical))
	blanked := make(map[int]bool, len(data.BlankIndices))
	for _, i := range data.BlankIndices {
		blanked[i] = true
	}

	blankNum := 1
	display := make([]string, len(words))
	for i, w := range words {
		if blanked[i] {
			display[i] = fmt.Sprintf("___(%d)___", blankNum)
			blankNum++
		} else {
			display[i] = w
		}
	}

	return fmt.Sprintf(`Round %d/%d - Fill in the Blanks (%d%%)

Reference: %s

%s

Time: %d seconds
Reply with: 1:word 2:word 3:word ...`,
		room.CurrentRound, room.TotalRounds, data.BlankPercentage,
		verse.Reference, strings.Join(display, " "), timeLimit)
}

func answerSubmittedMessage(score int, feedback, translation string) string {
	return fmt.Sprintf(`Answer submitted!

Your score: %d%% (%s)
%q

Waiting for opponent...`, score, translation, feedback)
}

func roundResultsMessage(room *model.RoomState) string {
	result := room.RoundResults[room.CurrentRound]
	players := sortedPlayers(room)

	var b strings.Builder
	fmt.Fprintf(&b, "Round %d Results\n\n", room.CurrentRound)
	if result != nil {
		fmt.Fprintf(&b, "Correct verse:\n%q\n\n", result.VisibleText)
	}

	sort.SliceStable(players, func(i, j int) bool {
		return roundScore(players[i]) > roundScore(players[j])
	})
	for _, p := range players {
		score, translation := 0, ""
		if result != nil {
			if pr, ok := result.Players[p.ID]; ok {
				score, translation = pr.Score, pr.Translation
			}
		}
		if translation != "" {
			fmt.Fprintf(&b, "%s: %d%% (%s)\n", p.Name, score, translation)
		} else {
			fmt.Fprintf(&b, "%s: %d%%\n", p.Name, score)
		}
	}

	b.WriteString("\nTotal Scores:")
	for _, p := range players {
		fmt.Fprintf(&b, "\n%s: %d", p.Name, p.TotalScore)
	}
	return b.String()
}

func finalResultsMessage(room *model.RoomState) string {
	players := sortedPlayers(room)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].TotalScore > players[j].TotalScore
	})

	var b strings.Builder
	b.WriteString("Game Over!\n\n")

	if len(players) > 1 && players[0].TotalScore == players[1].TotalScore {
		b.WriteString("It's a tie!\n\n")
	} else if len(players) > 0 {
		fmt.Fprintf(&b, "Winner: %s!\n\n", players[0].Name)
	}

	b.WriteString("Final Scores:\n")
	for _, p := range players {
		avg := 0
		if len(p.RoundScores) > 0 {
			sum := 0
			for _, s := range p.RoundScores {
				sum += s
			}
			avg = (sum + len(p.RoundScores)/2) / len(p.RoundScores)
		}
		fmt.Fprintf(&b, "%s: %d (avg %d%%)\n", p.Name, p.TotalScore, avg)
	}

	b.WriteString("\nRound by Round:")
	for _, p := range players {
		parts := make([]string, len(p.RoundScores))
		for i, s := range p.RoundScores {
			parts[i] = fmt.Sprintf("R%d:%d%%", i+1, s)
		}
		fmt.Fprintf(&b, "\n%s: %s", p.Name, strings.Join(parts, " "))
	}

	b.WriteString("\n\nThanks for playing!")
	return b.String()
}

func notInGameMessage() string {
	return "You're not in a game. Use /newgame to create one or /join CODE to join."
}

func alreadyInGameMessage(roomCode string) string {
	return fmt.Sprintf("You're already in a game (Room: %s). Use /leave to exit first.", roomCode)
}

// sortedPlayers returns the room's players ordered by join time so
// message lines are stable across updates.
func sortedPlayers(room *model.RoomState) []*model.Player {
	players := make([]*model.Player, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, p)
	}
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	return players
}

func roundScore(p *model.Player) int {
	if p.RoundScore == nil {
		return 0
	}
	return *p.RoundScore
}

package console

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrQuit is returned by Execute when the user asked to quit.
var ErrQuit = errors.New("quit")

const usage = `commands (type : first):
  p, toggle           toggle play/pause
  play, pause, stop   control playback
  n, next             skip to the next dialogue
  b, back             go back to the previous dialogue
  seek <percent>      move within the current utterance
  voices <A> <B>      change the speaker voices
  status              print the player status
  q, quit             exit`

// Execute runs a single command line and returns the text to show.
// An empty line toggles playback.
func Execute(p Player, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		fields = []string{"p"}
	}

	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "p", "toggle":
		return "", toggle(p)
	case "play":
		return "", p.Play()
	case "pause":
		p.Pause()
	case "s", "stop":
		p.Stop()
	case "n", "next":
		p.Next()
	case "b", "back", "prev", "previous":
		p.Previous()
	case "seek":
		if len(args) != 1 {
			return "", errors.New("usage: seek <percent>")
		}

		percent, err := parsePercent(args[0])
		if err != nil {
			return "", err
		}

		p.Seek(percent)
	case "voices":
		if len(args) != 2 {
			return "", errors.New("usage: voices <voiceA> <voiceB>")
		}

		p.SetVoices(args[0], args[1])
	case "status":
		return FormatStatus(p.Status()), nil
	case "h", "help", "?":
		return usage, nil
	case "q", "quit", "exit":
		return "", ErrQuit
	default:
		return "", fmt.Errorf("unknown command %q, type :help to list commands", fields[0])
	}

	return "", nil
}

func parsePercent(s string) (float64, error) {
	percent, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || math.IsNaN(percent) || math.IsInf(percent, 0) {
		return 0, fmt.Errorf("invalid seek percentage %q", s)
	}

	return percent, nil
}

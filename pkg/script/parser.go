package script

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ohler55/ojg/oj"
)

// Parse compiles script source into a Script. The first malformed line aborts
// the parse with a *ParseError naming the line and reason; no instructions
// from a broken script ever run.
func Parse(src string) (*Script, error) {
	var instructions []Instruction

	for i, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		keyword, args, _ := strings.Cut(line, " ")
		args = strings.TrimSpace(args)

		inst, err := parseInstruction(keyword, args)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Reason: err}
		}
		instructions = append(instructions, inst)
	}

	return &Script{instructions: instructions}, nil
}

// ParseFile reads and parses a script file.
func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

func parseInstruction(keyword, args string) (Instruction, error) {
	switch keyword {
	case "sleep":
		if args == "" {
			return nil, ErrMissingArgument
		}
		d, err := time.ParseDuration(args)
		if err != nil {
			return nil, ErrExpectedDuration
		}
		return Sleep{Duration: d}, nil

	case "sleep_ms":
		ms, err := requireInt(args)
		if err != nil {
			return nil, err
		}
		return Sleep{Duration: time.Duration(ms) * time.Millisecond}, nil

	case "sleep_s":
		s, err := requireInt(args)
		if err != nil {
			return nil, err
		}
		return Sleep{Duration: time.Duration(s) * time.Second}, nil

	case "invalidate_session":
		if args == "" {
			return nil, ErrMissingArgument
		}
		resumable, err := strconv.ParseBool(args)
		if err != nil {
			return nil, ErrExpectedBoolean
		}
		return InvalidateSession{Resumable: resumable}, nil

	case "dispatch":
		event, payload, ok := strings.Cut(args, " ")
		if !ok || event == "" {
			return nil, ErrMissingArgument
		}
		payload = strings.TrimSpace(payload)
		if _, err := oj.ParseString(payload); err != nil {
			return nil, ErrInvalidJSON
		}
		return Dispatch{Event: event, Data: json.RawMessage(payload)}, nil

	case "heartbeat":
		return Heartbeat{}, nil

	default:
		return nil, ErrUnknownInstruction
	}
}

func requireInt(args string) (int64, error) {
	if args == "" {
		return 0, ErrMissingArgument
	}
	n, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return 0, ErrExpectedInteger
	}
	return n, nil
}

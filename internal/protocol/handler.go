package protocol

import (
	"fmt"

	"github.com/muurk/tapcalc/internal/calc"
)

// Result describes what HandleMessage did, for logging and metrics.
type Result struct {
	Reply   *ServerMessage
	Action  calc.Action
	EvalErr error // Evaluate's error when Action is ActionEvaluate
	Handled bool  // false for key names with no binding
}

// HandleMessage applies a client message to the display and builds the reply.
func HandleMessage(d *calc.Display, msg *ClientMessage) (Result, error) {
	switch msg.Type {
	case TypeKey:
		action, err := calc.Dispatch(d, msg.Key)
		res := Result{Action: action, Handled: action != calc.ActionNone}
		if action == calc.ActionEvaluate {
			res.EvalErr = err
		} else if err != nil {
			return res, fmt.Errorf("key %q: %w", msg.Key, err)
		}
		res.Reply = BuildDisplay(d, action, res.EvalErr)
		return res, nil

	case TypeReset:
		d.Clear()
		return Result{Action: calc.ActionClear, Handled: true, Reply: BuildDisplay(d, calc.ActionClear, nil)}, nil

	case TypePing:
		return Result{Handled: true, Reply: BuildPong(d)}, nil
	}

	return Result{}, fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, msg.Type)
}

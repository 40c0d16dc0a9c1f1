package protocol

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/muurk/tapcalc/internal/calc"
)

func TestParseClientMessage(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantType MessageType
		wantKey  string
		wantErr  bool
	}{
		{"digit key", `{"type":"key","key":"7"}`, TypeKey, "7", false},
		{"enter key", `{"type":"key","key":"Enter"}`, TypeKey, "Enter", false},
		{"multiply sign", `{"type":"key","key":"×"}`, TypeKey, "×", false},
		{"ping", `{"type":"ping"}`, TypePing, "", false},
		{"reset", `{"type":"reset"}`, TypeReset, "", false},
		{"empty frame", ``, "", "", true},
		{"not json", `7`, "", "", true},
		{"missing type", `{"key":"7"}`, "", "", true},
		{"unknown type", `{"type":"eval"}`, "", "", true},
		{"key without key", `{"type":"key"}`, "", "", true},
		{"key too long", `{"type":"key","key":"` + strings.Repeat("a", MaxKeyLength+1) + `"}`, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseClientMessage([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseClientMessage() error = nil, want error")
				}
				if !errors.Is(err, ErrInvalidMessage) {
					t.Errorf("error %v should wrap ErrInvalidMessage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClientMessage() error = %v", err)
			}
			if msg.Type != tt.wantType || msg.Key != tt.wantKey {
				t.Errorf("ParseClientMessage() = %+v, want type %s key %q", msg, tt.wantType, tt.wantKey)
			}
		})
	}
}

func TestParseClientMessage_TooLarge(t *testing.T) {
	data := make([]byte, MaxMessageSize+1)
	if _, err := ParseClientMessage(data); err == nil {
		t.Error("oversized frame should be rejected")
	}
}

func TestHandleMessage_Sequence(t *testing.T) {
	d := calc.NewDisplay(calc.DefaultOptions())

	steps := []struct {
		key        string
		wantText   string
		wantState  string
		wantAction string
	}{
		{"6", "6", "entering", "digit"},
		{"*", "6×", "entering", "operator"},
		{"7", "6×7", "entering", "digit"},
		{"Enter", "42", "entering", "evaluate"},
		{"Backspace", "4", "entering", "backspace"},
		{"Escape", "", "empty", "clear"},
	}

	for _, step := range steps {
		res, err := HandleMessage(d, BuildKey(step.key))
		if err != nil {
			t.Fatalf("key %q: HandleMessage() error = %v", step.key, err)
		}
		if !res.Handled {
			t.Errorf("key %q should be handled", step.key)
		}
		reply := res.Reply
		if reply.Type != TypeDisplay || reply.Display != step.wantText || reply.State != step.wantState || reply.Action != step.wantAction {
			t.Errorf("key %q: reply = %+v, want display %q state %s action %s",
				step.key, reply, step.wantText, step.wantState, step.wantAction)
		}
	}
}

func TestHandleMessage_EvaluationError(t *testing.T) {
	d := calc.NewDisplay(calc.DefaultOptions())
	for _, k := range []string{"8", "/", "0"} {
		if _, err := HandleMessage(d, BuildKey(k)); err != nil {
			t.Fatalf("key %q: %v", k, err)
		}
	}

	res, err := HandleMessage(d, BuildKey("="))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !calc.IsDivisionByZero(res.EvalErr) {
		t.Errorf("EvalErr = %v, want division by zero", res.EvalErr)
	}
	if res.Reply.Display != calc.DivisionByZeroText || res.Reply.State != "error" {
		t.Errorf("reply = %+v", res.Reply)
	}
	if res.Reply.Error != calc.KindDivisionByZero.String() {
		t.Errorf("reply.Error = %q", res.Reply.Error)
	}
}

func TestHandleMessage_UnboundKey(t *testing.T) {
	d := calc.NewDisplay(calc.DefaultOptions())
	_, _ = HandleMessage(d, BuildKey("5"))

	res, err := HandleMessage(d, BuildKey("F1"))
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if res.Handled {
		t.Error("F1 should not be handled")
	}
	if res.Reply.Display != "5" || res.Reply.Action != "" {
		t.Errorf("reply = %+v", res.Reply)
	}
}

func TestHandleMessage_PingAndReset(t *testing.T) {
	d := calc.NewDisplay(calc.DefaultOptions())
	_, _ = HandleMessage(d, BuildKey("9"))

	res, err := HandleMessage(d, &ClientMessage{Type: TypePing})
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if res.Reply.Type != TypePong || res.Reply.Display != "9" {
		t.Errorf("ping reply = %+v", res.Reply)
	}

	res, err = HandleMessage(d, &ClientMessage{Type: TypeReset})
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if d.Text() != "" || res.Reply.State != "empty" {
		t.Errorf("reset reply = %+v, display %q", res.Reply, d.Text())
	}

	if _, err := HandleMessage(d, &ClientMessage{Type: "bogus"}); err == nil {
		t.Error("unknown message type should fail")
	}
}

func TestServerMessageJSON(t *testing.T) {
	d := calc.NewDisplay(calc.DefaultOptions())
	_, _ = HandleMessage(d, BuildKey("1"))

	data, err := json.Marshal(BuildError(d, "rate limited"))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"type":"error","display":"1","state":"entering","error":"rate limited"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	msg, err := ParseServerMessage(data)
	if err != nil {
		t.Fatalf("ParseServerMessage() error = %v", err)
	}
	if msg.Type != TypeError || msg.Error != "rate limited" {
		t.Errorf("ParseServerMessage() = %+v", msg)
	}

	if _, err := ParseServerMessage([]byte(`{}`)); err == nil {
		t.Error("server message without type should fail")
	}
}

func TestMessageString(t *testing.T) {
	if got := BuildKey("7").String(); got != `key("7")` {
		t.Errorf("String() = %s", got)
	}
	if got := (&ServerMessage{Type: TypePong}).String(); got != "pong" {
		t.Errorf("String() = %s", got)
	}
}

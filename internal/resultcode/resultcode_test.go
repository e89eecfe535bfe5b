package resultcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/iabetor/voicevox-capi/internal/engine"
)

func TestCodes_Values(t *testing.T) {
	want := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 255}
	got := Codes()
	if len(got) != len(want) {
		t.Fatalf("expected %d codes, got %d", len(want), len(got))
	}
	for i := range want {
		if int32(got[i]) != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMessage_Total(t *testing.T) {
	seen := make(map[string]Code)
	for _, c := range Codes() {
		msg := Message(c)
		if msg == "" {
			t.Errorf("%s has no message", c)
		}
		if prev, dup := seen[msg]; dup {
			t.Errorf("%s and %s share message %q", prev, c, msg)
		}
		seen[msg] = c
	}
	if Message(Code(42)) != Message(UnknownError) {
		t.Error("unknown values should get the unknown-error message")
	}
	if Code(42).String() != "VOICEVOX_RESULT(42)" {
		t.Errorf("String: got %q", Code(42).String())
	}
}

func TestFrom_EngineKinds(t *testing.T) {
	for _, k := range engine.Kinds() {
		err := fmt.Errorf("wrapped: %w", &engine.Error{Kind: k})
		c := From(err)
		if c == OK || c == UnknownError {
			t.Errorf("kind %v mapped to %s", k, c)
		}
	}

	tests := []struct {
		err  error
		want Code
	}{
		{nil, OK},
		{engine.ErrUninitializedStatus, UninitializedStatusError},
		{&engine.Error{Kind: engine.KindInvalidSpeakerID}, InvalidSpeakerIDError},
		{&engine.Error{Kind: engine.KindParseKana}, ParseKanaError},
		{ErrInvalidUTF8Input, InvalidUTF8InputError},
		{fmt.Errorf("dict dir: %w", ErrInvalidUTF8Input), InvalidUTF8InputError},
		{&AudioQueryError{Err: errors.New("bad json")}, InvalidAudioQueryError},
		{&engine.Error{Kind: engine.Kind(99)}, UnknownError},
		{errors.New("something else"), UnknownError},
	}
	for _, tt := range tests {
		if got := From(tt.err); got != tt.want {
			t.Errorf("From(%v): got %s, want %s", tt.err, got, tt.want)
		}
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "full",
			err:  New(ResolutionFailure, "uuid-123", "no sidecar matched").AtStep("resolve_uuid"),
			want: "resolve_uuid: resolution_failure: uuid-123: no sidecar matched",
		},
		{
			name: "no step",
			err:  New(ConfigMissing, "startScene", "field is empty"),
			want: "config_missing: startScene: field is empty",
		},
		{
			name: "no subject",
			err:  &Error{Kind: ParseError, Err: fmt.Errorf("bad json")},
			want: "parse_error: bad json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAtStepKeepsFirst(t *testing.T) {
	err := New(AnchorNotFound, "Canvas", "missing").AtStep("locate_anchor").AtStep("mutate")
	assert.Equal(t, "locate_anchor", err.Step)
}

func TestWithStep(t *testing.T) {
	assert.NoError(t, WithStep(nil, "persist"))

	plain := stderrors.New("disk full")
	wrapped := WithStep(plain, "persist")
	assert.Equal(t, IOFailure, KindOf(wrapped))
	assert.Equal(t, "persist", StepOf(wrapped))
	assert.ErrorIs(t, wrapped, plain)

	classified := New(RangeError, "7", "out of range")
	assert.Equal(t, "select_scene", StepOf(WithStep(classified, "select_scene")))
}

func TestKindOfThroughWrapping(t *testing.T) {
	inner := New(ParseError, "scene.fire", "unexpected token")
	outer := fmt.Errorf("loading: %w", inner)

	assert.True(t, Is(outer, ParseError))
	assert.False(t, Is(outer, RangeError))
	assert.Equal(t, Kind(""), KindOf(stderrors.New("plain")))
}

func TestKindTitle(t *testing.T) {
	assert.Equal(t, "ANCHOR NOT FOUND", AnchorNotFound.Title())
}

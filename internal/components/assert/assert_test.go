package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type thing struct{}

func TestNotNil(t *testing.T) {
	require.NotPanics(t, func() { NotNil(&thing{}, "thing") })
	require.NotPanics(t, func() { NotNil(thing{}, "thing") })
	require.PanicsWithValue(t, "expected thing to be not nil", func() { NotNil(nil, "thing") })

	var typed *thing
	require.PanicsWithValue(t, "expected thing to be not nil, got a nil *assert.thing", func() { NotNil(typed, "thing") })
}

func TestNotEmptyStr(t *testing.T) {
	require.NotPanics(t, func() { NotEmptyStr("x", "base url") })
	require.PanicsWithValue(t, "expected base url to be non-empty", func() { NotEmptyStr("", "base url") })
}

package input

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCombo(t *testing.T) {
	tests := []struct {
		in   string
		want Combo
	}{
		{"enter", Combo{Key: "enter"}},
		{"Return", Combo{Key: "enter"}},
		{"cmd+shift+g", Combo{Key: "g", Modifiers: []string{"cmd", "shift"}}},
		{"Command + Option + esc", Combo{Key: "escape", Modifiers: []string{"cmd", "alt"}}},
		{"control+l", Combo{Key: "l", Modifiers: []string{"ctrl"}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCombo(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCombo_Invalid(t *testing.T) {
	for _, in := range []string{"", "cmd+", "hyper+g", "+g"} {
		_, err := ParseCombo(in)
		assert.Error(t, err, in)
	}
}

func TestCombo_StringAndTap(t *testing.T) {
	c, err := ParseCombo("command+shift+G")
	require.NoError(t, err)
	assert.Equal(t, "cmd+shift+g", c.String())

	r := &Recorder{}
	require.NoError(t, c.Tap(context.Background(), r))
	require.Len(t, r.Events(), 1)
	assert.Equal(t, "key(cmd+shift+g)", r.Events()[0].String())
}

func TestNormalize(t *testing.T) {
	decomposed := "Re\u0301plays/cafe\u0301.replay"
	assert.Equal(t, "R\u00e9plays/caf\u00e9.replay", Normalize(decomposed))
	assert.NotEqual(t, decomposed, Normalize(decomposed))
	assert.Equal(t, "plain", Normalize("plain"))
}

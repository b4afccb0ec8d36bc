package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func botOrNotRules() Rules {
	return Rules{
		OwnerHint:  "botornot",
		TitleHints: []string{"bot or not"},
		MinWidth:   100,
		MinHeight:  100,
	}
}

func TestMatcher_Match(t *testing.T) {
	m, err := botOrNotRules().Compile()
	require.NoError(t, err)

	tests := []struct {
		name string
		d    Descriptor
		want bool
	}{
		{"owner hint", Descriptor{Owner: "BotOrNot.Avalonia", Width: 1200, Height: 800}, true},
		{"owner hint in title", Descriptor{Owner: "dotnet", Title: "BotOrNot", Width: 1200, Height: 800}, true},
		{"title hint", Descriptor{Owner: "dotnet", Title: "Bot or Not - Replay Analyzer", Width: 1200, Height: 800}, true},
		{"no hint", Descriptor{Owner: "Finder", Title: "Downloads", Width: 1200, Height: 800}, false},
		{"non-zero layer", Descriptor{Owner: "BotOrNot", Layer: 25, Width: 1200, Height: 800}, false},
		{"too narrow", Descriptor{Owner: "BotOrNot", Width: 100, Height: 800}, false},
		{"too short", Descriptor{Owner: "BotOrNot", Width: 800, Height: 50}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.d))
		})
	}
}

func TestMatcher_NoHintsMatchesAnyNormalWindow(t *testing.T) {
	m, err := Rules{MinWidth: 10, MinHeight: 10}.Compile()
	require.NoError(t, err)

	assert.True(t, m.Match(Descriptor{Owner: "anything", Width: 20, Height: 20}))
	assert.False(t, m.Match(Descriptor{Owner: "anything", Layer: 3, Width: 20, Height: 20}))
}

func TestMatcher_Expression(t *testing.T) {
	r := botOrNotRules()
	r.Match = `pid == 4242 && width >= 1000`
	m, err := r.Compile()
	require.NoError(t, err)

	assert.True(t, m.Match(Descriptor{PID: 4242, Owner: "BotOrNot", Width: 1200, Height: 800}))
	assert.False(t, m.Match(Descriptor{PID: 1, Owner: "BotOrNot", Width: 1200, Height: 800}))
	assert.False(t, m.Match(Descriptor{PID: 4242, Owner: "BotOrNot", Width: 900, Height: 800}))
}

func TestRules_CompileRejectsBadExpression(t *testing.T) {
	_, err := Rules{Match: `title +`}.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile window match")

	_, err = Rules{Match: `title`}.Compile()
	require.Error(t, err, "non-boolean expressions are rejected")

	_, err = Rules{Match: `unknown_field == 1`}.Compile()
	require.Error(t, err)
}

func TestMatcher_First(t *testing.T) {
	m, err := botOrNotRules().Compile()
	require.NoError(t, err)

	ds := []Descriptor{
		{ID: 1, Owner: "Dock", Layer: 20, Width: 2000, Height: 80},
		{ID: 2, Owner: "BotOrNot", Width: 1200, Height: 800},
		{ID: 3, Owner: "BotOrNot", Width: 600, Height: 400},
	}
	d, ok := m.First(ds)
	require.True(t, ok)
	assert.Equal(t, 2, d.ID)

	_, ok = m.First(ds[:1])
	assert.False(t, ok)
}

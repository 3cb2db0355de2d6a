package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_PicksHighestScore(t *testing.T) {
	label, err := Resolve(Distribution{0.1, 0.05, 0.05, 0.6, 0.1, 0.05, 0.05})
	require.NoError(t, err)
	assert.Equal(t, Happy, label)
}

func TestResolve_TieGoesToLowestIndex(t *testing.T) {
	label, err := Resolve(Distribution{0.5, 0.5, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, Angry, label)

	label, err = Resolve(Distribution{0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, Angry, label)
}

func TestResolve_OneHotRoundTrip(t *testing.T) {
	for i, want := range Labels {
		d := make(Distribution, NumClasses)
		d[i] = 1
		got, err := Resolve(d)
		require.NoError(t, err)
		assert.Equal(t, want, got, "index %d", i)
	}
}

func TestResolve_WrongLength(t *testing.T) {
	tests := []struct {
		name string
		d    Distribution
	}{
		{"nil", nil},
		{"empty", Distribution{}},
		{"short", Distribution{0.2, 0.8}},
		{"long", Distribution{0, 0, 0, 0, 0, 0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.d)
			assert.ErrorIs(t, err, ErrEmptyDistribution)
		})
	}
}

func TestLabelIndex(t *testing.T) {
	assert.Equal(t, 0, Index(Angry))
	assert.Equal(t, 6, Index(Neutral))
	assert.Equal(t, -1, Index("Unknown"))
	assert.True(t, Surprise.Valid())
	assert.False(t, Label("happy").Valid())
}

func TestDistributionScores(t *testing.T) {
	scores := Distribution{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7}.Scores()
	require.Len(t, scores, NumClasses)
	assert.InDelta(t, 0.4, scores[Happy], 1e-6)
	assert.InDelta(t, 0.7, scores[Neutral], 1e-6)
}

func TestSelect_DefaultTable(t *testing.T) {
	r := DefaultResponses()
	assert.Equal(t, "You are smiling. You look happy today", r.Select(Happy))
	assert.Equal(t, "Wow! You look surprised", r.Select(Surprise))
	assert.Equal(t, "Emotion detected.", r.Select("Unknown"))
}

func TestNewResponses_RequiresEveryLabel(t *testing.T) {
	_, err := NewResponses(map[Label]string{Happy: "yay"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Angry")
	assert.NotContains(t, err.Error(), "Happy")
}

func TestNewResponses_BlankFallback(t *testing.T) {
	table := map[Label]string{}
	for _, l := range Labels {
		table[l] = "msg " + string(l)
	}
	r, err := NewResponses(table, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultFallback, r.Select("nope"))
	assert.Equal(t, "msg Fear", r.Select(Fear))
}

func TestNewResponses_CopiesTable(t *testing.T) {
	table := map[Label]string{}
	for _, l := range Labels {
		table[l] = "x"
	}
	r, err := NewResponses(table, "fb")
	require.NoError(t, err)

	table[Happy] = "changed"
	assert.Equal(t, "x", r.Select(Happy))
}

func TestFromConfig(t *testing.T) {
	r, err := FromConfig(map[string]string{"Sad": "Cheer up"}, "Something detected.")
	require.NoError(t, err)
	assert.Equal(t, "Cheer up", r.Select(Sad))
	assert.Equal(t, "You look calm and neutral", r.Select(Neutral))
	assert.Equal(t, "Something detected.", r.Select("Bored"))

	_, err = FromConfig(map[string]string{"Bored": "meh"}, "")
	assert.Error(t, err)
}

func TestContractValidate(t *testing.T) {
	ok := Contract{Version: "fer2013-v1", Classes: []string{"Angry", "Disgust", "Fear", "Happy", "Sad", "Surprise", "Neutral"}}
	assert.NoError(t, ok.Validate())

	swapped := Contract{Classes: []string{"Angry", "Disgust", "Fear", "Sad", "Happy", "Surprise", "Neutral"}}
	err := swapped.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class 3")

	short := Contract{Classes: []string{"Angry"}}
	assert.Error(t, short.Validate())
}

package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sumPayload struct {
	First    *int
	Second   *int
	Memorize *bool
}

func sumFields(t *testing.T) *FieldSet {
	t.Helper()
	fs, err := For[*sumPayload]().
		Bool("Memorize", "Memorize result?", func(p *sumPayload) **bool { return &p.Memorize }, WithOrder(3)).
		Int("First", "First?", func(p *sumPayload) **int { return &p.First },
			WithOrder(1), WithReprompt("Between 1 and 10"), WithValidator(IntBetween(1, 10))).
		Int("Second", "Second?", func(p *sumPayload) **int { return &p.Second }, WithOrder(2)).
		Build()
	require.NoError(t, err)
	return fs
}

func TestBuildSortsByOrder(t *testing.T) {
	fs := sumFields(t)
	assert.Equal(t, []string{"First", "Second", "Memorize"}, fs.Names())
	assert.Equal(t, "Second?", fs.At(1).Reprompt, "reprompt defaults to prompt")
}

func TestBuildTiesKeepDeclarationOrder(t *testing.T) {
	type p struct{ A, B, C *string }
	fs, err := For[*p]().
		Text("C", "c", func(x *p) **string { return &x.C }).
		Text("A", "a", func(x *p) **string { return &x.A }).
		Text("B", "b", func(x *p) **string { return &x.B }, WithOrder(-1)).
		Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, fs.Names())
}

func TestBuildErrors(t *testing.T) {
	type p struct{ A *string }
	acc := func(x *p) **string { return &x.A }

	_, err := For[*p]().Build()
	assert.ErrorIs(t, err, ErrNoFields)

	_, err = For[*p]().Text("A", " ", acc).Build()
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	_, err = For[*p]().Text("A", "a", acc).Text("A", "again", acc).Build()
	assert.ErrorIs(t, err, ErrDuplicateField)

	_, err = For[*p]().Text("A", "a", nil).Build()
	assert.ErrorIs(t, err, ErrNilAccessor)

	assert.Panics(t, func() { For[*p]().MustBuild() })
}

func TestCollectInOrder(t *testing.T) {
	o := NewOrchestrator(sumFields(t))
	p := &sumPayload{}
	var st State

	res, err := o.Begin(p, "", &st)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, res.Status)
	assert.Equal(t, "First?", res.Prompt)

	res, err = o.Continue(p, "", &st, "4")
	require.NoError(t, err)
	assert.Equal(t, "Second?", res.Prompt)
	assert.Equal(t, 1, st.Step)

	res, err = o.Continue(p, "", &st, "-7")
	require.NoError(t, err)
	assert.Equal(t, "Memorize result?", res.Prompt)

	res, err = o.Continue(p, "", &st, "Yes")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)

	assert.Equal(t, 4, *p.First)
	assert.Equal(t, -7, *p.Second)
	assert.True(t, *p.Memorize)
}

func TestInvalidReplyReprompts(t *testing.T) {
	o := NewOrchestrator(sumFields(t))
	p := &sumPayload{}
	var st State
	_, err := o.Begin(p, "", &st)
	require.NoError(t, err)

	for _, reply := range []string{"11", "abc", "0", "99999999999"} {
		res, err := o.Continue(p, "", &st, reply)
		require.NoError(t, err)
		assert.Equal(t, StatusWaiting, res.Status)
		assert.Equal(t, "Between 1 and 10", res.Prompt, reply)
		assert.Equal(t, 0, st.Step)
	}
	assert.Equal(t, 4, st.Attempts)
	assert.Nil(t, p.First)
}

func TestPrefilledFieldsAreSkipped(t *testing.T) {
	o := NewOrchestrator(sumFields(t))
	first, second := 2, 3
	p := &sumPayload{First: &first, Second: &second}
	var st State

	res, err := o.Begin(p, "", &st)
	require.NoError(t, err)
	assert.Equal(t, "Memorize result?", res.Prompt)
	assert.Equal(t, 2, st.Step)
}

func TestResumeFromPersistedState(t *testing.T) {
	fs := sumFields(t)
	p := &sumPayload{}
	var st State
	_, err := NewOrchestrator(fs).Begin(p, "", &st)
	require.NoError(t, err)
	_, err = NewOrchestrator(fs).Continue(p, "", &st, "5")
	require.NoError(t, err)

	// um novo orquestrador retoma exatamente do passo salvo
	resumed := st
	res, err := NewOrchestrator(fs).Continue(p, "", &resumed, "6")
	require.NoError(t, err)
	assert.Equal(t, "Memorize result?", res.Prompt)
	assert.Equal(t, 5, *p.First)
	assert.Equal(t, 6, *p.Second)
}

func TestConfirmation(t *testing.T) {
	type p struct{ Name *string }
	fs := For[*p]().Text("Name", "Name?", func(x *p) **string { return &x.Name }).MustBuild()
	o := NewOrchestrator(fs)

	t.Run("declined", func(t *testing.T) {
		payload := &p{}
		var st State
		_, err := o.Begin(payload, "Proceed?", &st)
		require.NoError(t, err)

		res, err := o.Continue(payload, "Proceed?", &st, "Bob")
		require.NoError(t, err)
		assert.Equal(t, "Proceed?"+ConfirmSuffix, res.Prompt)

		res, err = o.Continue(payload, "Proceed?", &st, "maybe")
		require.NoError(t, err)
		assert.Equal(t, ConfirmReprompt, res.Prompt)

		res, err = o.Continue(payload, "Proceed?", &st, "no")
		require.NoError(t, err)
		assert.Equal(t, StatusDeclined, res.Status)
	})

	t.Run("accepted", func(t *testing.T) {
		name := "Ann"
		payload := &p{Name: &name}
		var st State
		res, err := o.Begin(payload, "Proceed?", &st)
		require.NoError(t, err)
		assert.Equal(t, StatusWaiting, res.Status)

		res, err = o.Continue(payload, "Proceed?", &st, "yes")
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, res.Status)
	})
}

func TestWrongPayloadTypeIsConfigurationError(t *testing.T) {
	o := NewOrchestrator(sumFields(t))
	var st State
	_, err := o.Begin(&struct{}{}, "", &st)
	assert.ErrorIs(t, err, ErrFieldType)
}

func TestInvalidStep(t *testing.T) {
	o := NewOrchestrator(sumFields(t))
	st := State{Step: 9}
	_, err := o.Continue(&sumPayload{}, "", &st, "1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRecognize(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		kind  Kind
		input string
		want  interface{}
		ok    bool
	}{
		{KindText, "  Paris ", "Paris", true},
		{KindText, "   ", nil, false},
		{KindInt, "42", 42, true},
		{KindInt, "+3", 3, true},
		{KindInt, "2147483648", nil, false},
		{KindInt, "4.5", nil, false},
		{KindDouble, "4.5", 4.5, true},
		{KindDouble, "NaN", nil, false},
		{KindBool, "Yep", true, true},
		{KindBool, "nope.", false, true},
		{KindBool, "perhaps", nil, false},
		{KindDate, "2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{KindDate, "May 1, 2024", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{KindDate, "05/01/2024", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{KindDate, "tomorrow", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), true},
		{KindDate, "May 1", nil, false},
		{KindDate, "next week", nil, false},
	}

	for _, tt := range tests {
		got, ok := Recognize(tt.kind, tt.input, now)
		assert.Equal(t, tt.ok, ok, "%s %q", tt.kind, tt.input)
		if tt.ok {
			assert.Equal(t, tt.want, got, "%s %q", tt.kind, tt.input)
		}
	}
}

func TestValidators(t *testing.T) {
	assert.True(t, IntBetween(1, 10)(1))
	assert.True(t, IntBetween(1, 10)(10))
	assert.False(t, IntBetween(1, 10)(11))
	assert.False(t, IntBetween(1, 10)("5"))

	assert.False(t, NotEmpty()(" "))
	assert.True(t, NotEmpty()("x"))

	today := func() time.Time { return time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC) }
	assert.True(t, DateNotBefore(today)(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.False(t, DateNotBefore(today)(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)))
}

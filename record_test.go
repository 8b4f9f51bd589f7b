package serpdump_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/serpdump"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	t.Parallel()

	t.Run("zero value is absent", func(t *testing.T) {
		t.Parallel()

		var o serpdump.Optional
		v, ok := o.Get()

		assert.False(t, ok)
		assert.Empty(t, v)
		assert.Equal(t, serpdump.None(), o)
	})

	t.Run("empty string is present", func(t *testing.T) {
		t.Parallel()

		o := serpdump.Some("")

		assert.True(t, o.Present())
		assert.NotEqual(t, serpdump.None(), o)
	})

	t.Run("encodes absent as null and present as string", func(t *testing.T) {
		t.Parallel()

		absent, err := json.Marshal(serpdump.None())
		require.NoError(t, err)
		empty, err := json.Marshal(serpdump.Some(""))
		require.NoError(t, err)

		assert.Equal(t, "null", string(absent))
		assert.Equal(t, `""`, string(empty))
	})

	t.Run("does not escape diacritics or markup", func(t *testing.T) {
		t.Parallel()

		data, err := serpdump.Some("Příliš žluťoučký kůň <b>&</b>").MarshalJSON()

		require.NoError(t, err)
		assert.Equal(t, `"Příliš žluťoučký kůň <b>&</b>"`, string(data))
	})

	t.Run("decodes null as absent", func(t *testing.T) {
		t.Parallel()

		var r serpdump.Record
		err := json.Unmarshal([]byte(`{"Title":null,"Link":"","Snippet":"s"}`), &r)

		require.NoError(t, err)
		assert.False(t, r.Title.Present())
		assert.Equal(t, serpdump.Some(""), r.Link)
		assert.Equal(t, serpdump.Some("s"), r.Snippet)
		// A missing key stays absent
		assert.False(t, r.Icon.Present())
	})
}

func TestRecord_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, serpdump.Record{}.IsEmpty())
	assert.False(t, serpdump.Record{Icon: serpdump.Some("")}.IsEmpty())
}

func TestRecord_Fields(t *testing.T) {
	t.Parallel()

	r := serpdump.Record{
		Title:   serpdump.Some("t"),
		Link:    serpdump.Some("l"),
		Snippet: serpdump.Some("s"),
	}

	fields := r.Fields()

	assert.Equal(t, serpdump.Some("t"), fields[0])
	assert.Equal(t, serpdump.Some("l"), fields[1])
	assert.Equal(t, serpdump.Some("s"), fields[2])
	assert.Equal(t, serpdump.None(), fields[3])
}

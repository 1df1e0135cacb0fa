package nnsyntax

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/thingtalk/syntax"
)

func flatToString(l tokenList) string {
	return strings.Join(flattenStrings(l), " ")
}

func mustDate(t *testing.T, iso string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		t.Fatalf("bad date in test: %v", err)
	}
	return parsed
}

func Test_SequentialEntityAllocator(t *testing.T) {
	t.Run("allocates fresh names in order", func(t *testing.T) {
		assert := assert.New(t)

		bag := EntityMap{}
		a := NewSequentialEntityAllocator(bag, false)

		toks, err := a.findEntity(TermNumber, syntax.NumberValue{Value: 100}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		assert.Equal("NUMBER_0", flatToString(toks))

		toks, err = a.findEntity(TermNumber, syntax.NumberValue{Value: 200}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		assert.Equal("NUMBER_1", flatToString(toks))

		assert.Equal(100.0, bag["NUMBER_0"])
		assert.Equal(200.0, bag["NUMBER_1"])
	})

	t.Run("reuses a matching entry", func(t *testing.T) {
		assert := assert.New(t)

		bag := EntityMap{"NUMBER_0": 100.0}
		a := NewSequentialEntityAllocator(bag, false)

		toks, err := a.findEntity(TermNumber, syntax.NumberValue{Value: 100}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		assert.Equal("NUMBER_0", flatToString(toks))
		assert.Len(bag, 1)
	})

	t.Run("never overwrites a pre-populated key", func(t *testing.T) {
		assert := assert.New(t)

		bag := EntityMap{"NUMBER_3": 300.0}
		a := NewSequentialEntityAllocator(bag, false)

		toks, err := a.findEntity(TermNumber, syntax.NumberValue{Value: 100}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		assert.Equal("NUMBER_4", flatToString(toks))
		assert.Equal(300.0, bag["NUMBER_3"])
	})

	t.Run("explicit strings emit inline", func(t *testing.T) {
		assert := assert.New(t)

		bag := EntityMap{}
		a := NewSequentialEntityAllocator(bag, true)

		toks, err := a.findEntity(TermQuotedString, syntax.StringValue{Value: "hello world"}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		assert.Equal(`" hello world "`, flatToString(toks))
		assert.Empty(bag)
	})
}

func Test_SentenceEntityRetriever(t *testing.T) {
	t.Run("prefers the sentence over the bag", func(t *testing.T) {
		assert := assert.New(t)

		r := NewSentenceEntityRetriever(
			[]string{"tweet", "Hello", "World"},
			EntityMap{"QUOTED_STRING_0": "hello world"},
		)

		toks, err := r.findEntity(TermQuotedString, syntax.StringValue{Value: "hello world"}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		// the match is case-insensitive and emits the sentence span
		assert.Equal(`" Hello World "`, flatToString(toks))
	})

	t.Run("falls back to the bag", func(t *testing.T) {
		assert := assert.New(t)

		r := NewSentenceEntityRetriever(
			[]string{"tweet", "something"},
			EntityMap{"QUOTED_STRING_0": "hello"},
		)

		toks, err := r.findEntity(TermQuotedString, syntax.StringValue{Value: "hello"}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		assert.Equal("QUOTED_STRING_0", flatToString(toks))
	})

	t.Run("picks the smallest candidate and moves it to used", func(t *testing.T) {
		assert := assert.New(t)

		r := NewSentenceEntityRetriever(nil, EntityMap{
			"NUMBER_1": 100.0,
			"NUMBER_0": 100.0,
		})

		toks, err := r.findEntity(TermNumber, syntax.NumberValue{Value: 100}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		assert.Equal("NUMBER_0", flatToString(toks))

		// the second occurrence reuses NUMBER_1 from available, not the
		// used NUMBER_0: available entries win over used ones
		toks, err = r.findEntity(TermNumber, syntax.NumberValue{Value: 100}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		assert.Equal("NUMBER_1", flatToString(toks))
	})

	t.Run("reuses a used placeholder when available is exhausted", func(t *testing.T) {
		assert := assert.New(t)

		r := NewSentenceEntityRetriever(nil, EntityMap{"NUMBER_0": 100.0})

		_, err := r.findEntity(TermNumber, syntax.NumberValue{Value: 100}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		toks, err := r.findEntity(TermNumber, syntax.NumberValue{Value: 100}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		assert.Equal("NUMBER_0", flatToString(toks))
	})

	t.Run("not found is an error", func(t *testing.T) {
		assert := assert.New(t)

		r := NewSentenceEntityRetriever(nil, EntityMap{})
		_, err := r.findEntity(TermNumber, syntax.NumberValue{Value: 100}, findOpts{})
		var notFound EntityNotFoundError
		assert.ErrorAs(err, &notFound)
	})

	t.Run("not found is tolerated when asked", func(t *testing.T) {
		assert := assert.New(t)

		r := NewSentenceEntityRetriever(nil, EntityMap{})
		toks, err := r.findEntity(TermNumber, syntax.NumberValue{Value: 100}, findOpts{ignoreNotFound: true})
		assert.NoError(err)
		assert.Nil(toks)
	})

	t.Run("hashtag wire form", func(t *testing.T) {
		assert := assert.New(t)

		r := NewSentenceEntityRetriever([]string{"tag", "it", "cute"}, EntityMap{})
		toks, err := r.findEntity(TermHashtag, syntax.EntityValue{Type: "tt:hashtag", Value: "cute"}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		assert.Equal(`" cute " ^^tt:hashtag`, flatToString(toks))
	})

	t.Run("location wire form", func(t *testing.T) {
		assert := assert.New(t)

		r := NewSentenceEntityRetriever([]string{"weather", "in", "palo", "alto"}, EntityMap{})
		toks, err := r.findEntity(TermLocation, syntax.LocationValue{Value: syntax.LocationSpec{
			Kind: syntax.LocationUnresolved, Name: "palo alto",
		}}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		assert.Equal(`location: " palo alto "`, flatToString(toks))
	})

	t.Run("date iso form from sentence", func(t *testing.T) {
		assert := assert.New(t)

		r := NewSentenceEntityRetriever([]string{"on", "2018-06-23T00:00:00Z"}, EntityMap{})
		toks, err := r.findEntity(TermDate, syntax.DateValue{Value: syntax.DateSpec{
			Kind: syntax.DateAbsolute, Abs: mustDate(t, "2018-06-23T00:00:00Z"),
		}}, findOpts{})
		if !assert.NoError(err) {
			return
		}
		assert.Equal(`new Date ( " 2018-06-23T00:00:00Z " )`, flatToString(toks))
	})
}

func Test_SmallIntegers(t *testing.T) {
	assert := assert.New(t)

	// small integers never allocate NUMBER placeholders
	bag := EntityMap{}
	c := &compiler{retriever: NewSequentialEntityAllocator(bag, false)}

	for v := 0.0; v <= 12; v++ {
		toks, err := c.numberToNN(v)
		if !assert.NoError(err) {
			return
		}
		assert.NotContains(flatToString(toks), "NUMBER_")
	}
	assert.Empty(bag)

	toks, err := c.numberToNN(13)
	if !assert.NoError(err) {
		return
	}
	assert.Equal("NUMBER_0", flatToString(toks))
}

package providers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hostAdapter struct {
	name  string
	hosts []string
}

func (h hostAdapter) Name() string                            { return h.name }
func (h hostAdapter) Hosts() []string                         { return h.hosts }
func (h hostAdapter) Recognize(u string) bool                 { return MatchHost(u, h.hosts...) }
func (h hostAdapter) ParseTOC(Page) (*TOC, error)             { return nil, nil }
func (h hostAdapter) ParseChapter(Page) (*ChapterPage, error) { return nil, nil }

// greedy recognizes every URL, which overlaps with any other adapter.
type greedy struct{ hostAdapter }

func (greedy) Recognize(string) bool { return true }

func TestNewRegistry(t *testing.T) {
	a := hostAdapter{name: "a", hosts: []string{"a.example"}}
	b := hostAdapter{name: "b", hosts: []string{"b.example", "www.b.example"}}

	t.Run("valid", func(t *testing.T) {
		reg, err := NewRegistry(a, b)
		require.NoError(t, err)
		assert.Len(t, reg.Adapters(), 2)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := NewRegistry(a, a)
		assert.ErrorIs(t, err, ErrAmbiguousAdapters)
	})

	t.Run("shared host", func(t *testing.T) {
		c := hostAdapter{name: "c", hosts: []string{"b.example"}}
		_, err := NewRegistry(a, b, c)
		assert.ErrorIs(t, err, ErrAmbiguousAdapters)
	})

	t.Run("overlapping rule", func(t *testing.T) {
		g := greedy{hostAdapter{name: "g", hosts: []string{"g.example"}}}
		_, err := NewRegistry(a, g)
		assert.ErrorIs(t, err, ErrAmbiguousAdapters)
	})

	t.Run("no hosts", func(t *testing.T) {
		_, err := NewRegistry(hostAdapter{name: "empty"})
		assert.Error(t, err)
	})
}

func TestResolve(t *testing.T) {
	a := hostAdapter{name: "a", hosts: []string{"a.example"}}
	b := hostAdapter{name: "b", hosts: []string{"b.example"}}

	reg, err := NewRegistry(a, b)
	require.NoError(t, err)

	got, err := reg.Resolve("https://a.example/book/1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name())

	got, err = reg.Resolve("http://B.EXAMPLE:8080/x")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name())

	for _, u := range []string{"https://c.example/", "mailto:a@a.example", "not a url", ""} {
		_, err = reg.Resolve(u)
		var unsupported *UnsupportedSiteError
		assert.True(t, errors.As(err, &unsupported), u)
	}
}

func TestAdaptersReturnsCopy(t *testing.T) {
	reg, err := NewRegistry(hostAdapter{name: "a", hosts: []string{"a.example"}})
	require.NoError(t, err)

	list := reg.Adapters()
	list[0] = nil

	assert.NotNil(t, reg.Adapters()[0])
}

func TestWorkersFor(t *testing.T) {
	a := hostAdapter{name: "a", hosts: []string{"a.example"}}

	assert.Equal(t, 1, WorkersFor(a, 0))
	assert.Equal(t, 8, WorkersFor(a, 8))
	assert.Nil(t, EncodingOf(a))
}

type keyed struct{ hostAdapter }

func (keyed) Key() string { return "k1" }

func TestKeyOf(t *testing.T) {
	assert.Equal(t, "uukanshu", KeyOf(hostAdapter{name: "UU Kanshu"}))
	assert.Equal(t, "k1", KeyOf(keyed{hostAdapter{name: "Other"}}))
}

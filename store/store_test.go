package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/ypgen/errors"
)

func TestPageURL(t *testing.T) {
	assert.Equal(t, "https://wiki.example.org/index.php/Category:City", PageURL("https://wiki.example.org", "Category:City"))
	assert.Equal(t, "https://wiki.example.org/index.php/List of Cities", PageURL("https://wiki.example.org/", "List of Cities"))
}

func TestPageHasContent(t *testing.T) {
	var nilPage *Page
	assert.False(t, nilPage.HasContent())
	assert.False(t, (&Page{Exists: false}).HasContent())
	assert.False(t, (&Page{Exists: true, Text: ""}).HasContent())
	assert.True(t, (&Page{Exists: true, Text: "x"}).HasContent())
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("https://wiki.example.org")

	page, err := m.GetPage(ctx, "Help:City")
	require.NoError(t, err)
	assert.False(t, page.Exists)

	err = m.SavePage(ctx, "Help:City", "help", "summary")
	assert.True(t, errors.IsUnauthorized(err), "save requires login")

	require.NoError(t, m.Login(ctx))
	require.NoError(t, m.SavePage(ctx, "Help:City", "help", "summary"))

	page, err = m.GetPage(ctx, "Help:City")
	require.NoError(t, err)
	assert.True(t, page.HasContent())
	assert.Equal(t, "help", page.Text)
	assert.Equal(t, 2, m.Reads())
	assert.Equal(t, 1, m.Saves())
	assert.Equal(t, 1, m.Len())
}

func TestMemoryFailureInjection(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("")

	m.FailLogin = true
	assert.True(t, errors.IsUnauthorized(m.Login(ctx)))
	m.FailLogin = false
	require.NoError(t, m.Login(ctx))

	m.FailGetOn["Form:City"] = true
	_, err := m.GetPage(ctx, "Form:City")
	assert.True(t, errors.Is(err, errors.ErrStoreRead))

	m.FailSaveOn["Form:City"] = true
	err = m.SavePage(ctx, "Form:City", "x", "")
	assert.True(t, errors.Is(err, errors.ErrStoreWrite))
	_, ok := m.Text("Form:City")
	assert.False(t, ok)
}

func TestMemoryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemory("").GetPage(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

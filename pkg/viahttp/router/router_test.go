package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterStaticRoute(t *testing.T) {
	r := New()
	r.Handle("GET", "/health", "health-handler")

	h, params, ok := r.Match("GET", "/health")
	require.True(t, ok)
	assert.Equal(t, "health-handler", h)
	assert.Empty(t, params)
}

func TestRouterParamCapture(t *testing.T) {
	r := New()
	r.Handle("GET", "/users/:id", "user-handler")

	h, params, ok := r.Match("GET", "/users/42")
	require.True(t, ok)
	assert.Equal(t, "user-handler", h)
	assert.Equal(t, "42", params["id"])
}

func TestRouterCatchAll(t *testing.T) {
	r := New()
	r.Handle("GET", "/static/*", "static-handler")

	h, params, ok := r.Match("GET", "/static/css/main.css")
	require.True(t, ok)
	assert.Equal(t, "static-handler", h)
	assert.Equal(t, "css/main.css", params["*"])
}

func TestRouterMethodMismatch(t *testing.T) {
	r := New()
	r.Handle("GET", "/foo", "get-handler")

	_, _, ok := r.Match("POST", "/foo")
	assert.False(t, ok)
}

func TestRouterNoMatch(t *testing.T) {
	r := New()
	r.Handle("GET", "/foo", "get-handler")

	_, _, ok := r.Match("GET", "/bar")
	assert.False(t, ok)
}

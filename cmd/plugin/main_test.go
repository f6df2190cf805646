package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickMode(t *testing.T) {
	tests := []struct {
		name string
		args []string
		mode string
		rest []string
	}{
		{"no args", nil, "query", nil},
		{"serve", []string{"serve"}, "serve", []string{}},
		{"connect with url", []string{"connect", "ws://localhost:5050"}, "connect", []string{"ws://localhost:5050"}},
		{"explicit query", []string{"query", "lofi", "radio"}, "query", []string{"lofi", "radio"}},
		{"bare query text", []string{"lofi", "radio"}, "query", []string{"lofi", "radio"}},
		{"query text shadowing nothing", []string{"server", "rack"}, "query", []string{"server", "rack"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, rest := pickMode(tt.args)
			assert.Equal(t, tt.mode, mode)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

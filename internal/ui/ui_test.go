package ui

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_Output(t *testing.T) {
	var out, errOut bytes.Buffer
	c := NewConsoleWithWriters(context.Background(), &out, &errOut)

	c.Output("hello %s", "world")
	assert.Contains(t, out.String(), "hello world")

	c.Warn("careful")
	assert.Contains(t, errOut.String(), "careful")

	c.Error("boom")
	assert.Contains(t, errOut.String(), "boom")
}

func TestConsole_ContextCancelDropsOutput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	c := NewConsoleWithWriters(ctx, &out, &out)

	cancel()
	c.Output("dropped")
	assert.Empty(t, out.String())
}

func TestConsole_Status(t *testing.T) {
	var out bytes.Buffer
	c := NewConsoleWithWriters(context.Background(), &out, &out)

	status := c.Status()
	status.Update("working")
	assert.Contains(t, out.String(), "working")

	assert.NoError(t, status.Close())
	// Close is safe to call repeatedly.
	assert.NoError(t, status.Close())
}

func TestSilent(t *testing.T) {
	s := NewSilent()
	s.Output("x")
	s.Warn("x")
	s.Error("x")

	status := s.Status()
	status.Update("x")
	assert.NoError(t, status.Close())
}

package genctx

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/util"
)

func TestNew_LoggerCarriesLibrary(t *testing.T) {
	var buf bytes.Buffer
	logger := util.NewLogger(util.LoggerConfig{Level: util.LevelDebug, Format: util.FormatText, Output: &buf})
	c := New(util.WithLogger(context.Background(), logger), "sap.m", "1.120.0")

	assert.Equal(t, "sap.m", c.Library)
	assert.Equal(t, "1.120.0", c.Version)
	require.NotNil(t, c.Directives)

	c.Log().Warn("AUTOFIXING", "fqn", "sap.m.Button#attachPress")
	assert.Contains(t, buf.String(), "library=sap.m")
	assert.Contains(t, buf.String(), "fqn=sap.m.Button#attachPress")
}

func TestLog_NeverNil(t *testing.T) {
	var c *Context
	assert.Equal(t, slog.Default(), c.Log())
	assert.Equal(t, slog.Default(), (&Context{}).Log())
}

func TestIgnoreReason(t *testing.T) {
	c := New(context.Background(), "sap.m", "1.120.0")
	c.Directives = &apijson.Directives{FQNToIgnore: map[string]string{
		"sap.m.Button.getText": "return type narrowed by subclasses",
		"sap.m.Label":          "",
	}}

	reason, ok := c.IgnoreReason("sap.m.Button.getText")
	assert.True(t, ok)
	assert.Equal(t, "return type narrowed by subclasses", reason)

	reason, ok = c.IgnoreReason("sap.m.Label")
	assert.True(t, ok)
	assert.Empty(t, reason)

	_, ok = c.IgnoreReason("sap.m.Input")
	assert.False(t, ok)

	var nilCtx *Context
	_, ok = nilCtx.IgnoreReason("sap.m.Label")
	assert.False(t, ok)
}

package levellog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)

	l.Info("should not appear")
	l.Warn("should appear")

	out := buf.String()
	require.NotContains(t, out, "should not appear")
	require.Contains(t, out, "should appear")
	require.True(t, strings.HasPrefix(out, "[WARN] "))
}

func TestSetMinLevelChangesFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, ErrorLevel)

	l.Debugf("hidden %d", 1)
	require.Empty(t, buf.String())

	l.SetMinLevel(DebugLevel)
	l.Debugf("visible %d", 2)
	require.Contains(t, buf.String(), "visible 2")
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", DebugLevel.String())
	require.Equal(t, "ERROR", ErrorLevel.String())
	require.Contains(t, Level(99).String(), "LEVEL")
}

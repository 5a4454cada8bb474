package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func fixedTime() time.Time {
	return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestJSONLinesRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	root := NewJSONLinesLogRecorder(buf)
	root.Now = fixedTime
	session := root.NewSession()

	require.NoError(t, session.Record(&LogEntry{
		Type:         EventRunCommand,
		Index:        1,
		Command:      []string{"ls", "-l"},
		ResolvedPath: "/bin/ls",
		Status:       0,
	}))
	require.NoError(t, session.Record(&LogEntry{
		Type:    EventUnknownCommand,
		Index:   2,
		Command: []string{"nope"},
		Status:  127,
		Message: "not found",
	}))

	assert.Equal(t, 2, strings.Count(buf.String(), "\n"), "one line per entry")

	var entries []*LogEntry
	require.NoError(t, ReadJSONLinesLog(buf, func(le *LogEntry) {
		entries = append(entries, le)
	}))

	require.Len(t, entries, 2)
	assert.Equal(t, &LogEntry{
		Time:         fixedTime(),
		SessionID:    session.SessionID(),
		Type:         EventRunCommand,
		Index:        1,
		Command:      []string{"ls", "-l"},
		ResolvedPath: "/bin/ls",
	}, entries[0])
	assert.Equal(t, EventUnknownCommand, entries[1].Type)
	assert.Equal(t, 127, entries[1].Status)
	assert.Equal(t, "not found", entries[1].Message)
}

func TestReadJSONLinesLog_invalid(t *testing.T) {
	err := ReadJSONLinesLog(strings.NewReader(`{"time": "yesterday"}`), func(*LogEntry) {})
	assert.Error(t, err)

	err = ReadJSONLinesLog(strings.NewReader(`{not json`), func(*LogEntry) {})
	assert.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	session := NewNopLogger().NewSession()
	assert.NoError(t, session.Record(&LogEntry{Type: EventExit}))
}

func TestReport(t *testing.T) {
	var report Report
	for _, le := range []*LogEntry{
		{SessionID: "a", Type: EventRunCommand, Command: []string{"ls"}, ResolvedPath: "/bin/ls"},
		{SessionID: "a", Type: EventRunCommand, Command: []string{"ls", "-l"}, ResolvedPath: "/bin/ls", Status: 2},
		{SessionID: "a", Type: EventBuiltin, Command: []string{"cd", "/"}},
		{SessionID: "b", Type: EventUnknownCommand, Command: []string{"nope"}, Status: 127},
		{SessionID: "b", Type: EventInvalidInvocation, Command: []string{"exit", "x"}, Message: "Illegal number: x"},
		{SessionID: "b", Type: EventSyntaxError, Message: `Syntax error: "&&" unexpected`},
		{SessionID: "b", Type: EventEnvironmentFailure, Command: []string{"setenv", "A=B"}},
		{SessionID: "b", Type: EventExit, Status: 3},
		{SessionID: "b", Type: "mystery"},
	} {
		report.Update(le)
	}

	assert.Equal(t, 9, report.LogEntries)
	assert.Equal(t, 3, report.Sessions.Get("a"))
	assert.Equal(t, 2, report.RunCommand.CommandNames.Get("ls"))
	assert.Equal(t, 2, report.RunCommand.ResolvedCommandPaths.Get("/bin/ls"))
	assert.Equal(t, 1, report.RunCommand.Statuses.Get("2"))
	assert.Equal(t, 1, report.Builtin.CommandNames.Get("cd"))
	assert.Equal(t, 1, report.UnknownCommand.CommandNames.Get("nope"))
	assert.Equal(t, 1, report.SyntaxError.Count)
	assert.Equal(t, 1, report.Environment.Failures.Get("setenv A=B"))
	assert.Equal(t, 1, report.Exit.Statuses.Get("3"))
	assert.Equal(t, 1, report.InvalidEntries.Get("mystery"))

	out, err := yaml.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Illegal number: x")
}

func TestPathCounter_MarshalJSON(t *testing.T) {
	ctr := NewPathCounter("command", "error")
	ctr.Increment("a", "x")
	ctr.Increment("b", "y")
	ctr.Increment("b", "y")

	out, err := ctr.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"count": 2, "event": {"command": "b", "error": "y"}},
		{"count": 1, "event": {"command": "a", "error": "x"}}
	]`, string(out))
}

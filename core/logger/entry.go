package logger

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// EventType identifies what happened in a session.
type EventType string

const (
	// EventRunCommand is logged when an external program is launched.
	EventRunCommand EventType = "run_command"
	// EventBuiltin is logged when a builtin runs.
	EventBuiltin EventType = "builtin"
	// EventUnknownCommand is logged when a command can't be resolved.
	EventUnknownCommand EventType = "unknown_command"
	// EventInvalidInvocation is logged when a builtin rejects its arguments.
	EventInvalidInvocation EventType = "invalid_invocation"
	// EventSyntaxError is logged for misplaced operators.
	EventSyntaxError EventType = "syntax_error"
	// EventEnvironmentFailure is logged when the environment can't be changed.
	EventEnvironmentFailure EventType = "environment_failure"
	// EventExit is logged when the session ends.
	EventExit EventType = "exit"
)

// LogEntry is a single event.
type LogEntry struct {
	Time         time.Time
	SessionID    string
	Type         EventType
	Index        int
	Command      []string
	ResolvedPath string
	Status       int
	Message      string
}

const (
	fieldTime         = "time"
	fieldSession      = "session_id"
	fieldType         = "type"
	fieldIndex        = "index"
	fieldCommand      = "command"
	fieldResolvedPath = "resolved_path"
	fieldStatus       = "status"
	fieldMessage      = "message"
)

func (le *LogEntry) toStruct() (*structpb.Struct, error) {
	command := make([]interface{}, len(le.Command))
	for i, arg := range le.Command {
		command[i] = arg
	}

	fields := map[string]interface{}{
		fieldTime:    le.Time.UTC().Format(time.RFC3339Nano),
		fieldSession: le.SessionID,
		fieldType:    string(le.Type),
		fieldIndex:   le.Index,
		fieldCommand: command,
		fieldStatus:  le.Status,
	}
	if le.ResolvedPath != "" {
		fields[fieldResolvedPath] = le.ResolvedPath
	}
	if le.Message != "" {
		fields[fieldMessage] = le.Message
	}

	return structpb.NewStruct(fields)
}

func entryFromStruct(s *structpb.Struct) (*LogEntry, error) {
	fields := s.GetFields()

	le := &LogEntry{
		SessionID:    fields[fieldSession].GetStringValue(),
		Type:         EventType(fields[fieldType].GetStringValue()),
		Index:        int(fields[fieldIndex].GetNumberValue()),
		ResolvedPath: fields[fieldResolvedPath].GetStringValue(),
		Status:       int(fields[fieldStatus].GetNumberValue()),
		Message:      fields[fieldMessage].GetStringValue(),
	}

	if raw := fields[fieldTime].GetStringValue(); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("bad %s field: %w", fieldTime, err)
		}
		le.Time = ts
	}

	for _, v := range fields[fieldCommand].GetListValue().GetValues() {
		le.Command = append(le.Command, v.GetStringValue())
	}

	return le, nil
}

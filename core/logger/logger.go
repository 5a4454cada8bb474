package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures session events.
type Logger struct {
	Record LogRecorder

	// Now is the time source, defaults to time.Now.
	Now func() time.Time
}

// NewJSONLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJSONLinesLogRecorder(w io.Writer) *Logger {
	marshaler := protojson.MarshalOptions{}
	return &Logger{
		Record: func(le *LogEntry) error {
			s, err := le.toStruct()
			if err != nil {
				return err
			}
			entry, err := marshaler.Marshal(s)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// NewNopLogger creates a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{
		Record: func(*LogEntry) error { return nil },
	}
}

func (l *Logger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// NewSession creates a logger with attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// SessionLogger logs messages with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

// SessionID returns the ID stamped on every entry.
func (l *SessionLogger) SessionID() string {
	return l.sessionID
}

// Record stamps the entry with the session and time and stores it.
func (l *SessionLogger) Record(le *LogEntry) error {
	le.SessionID = l.sessionID
	if le.Time.IsZero() {
		le.Time = l.now()
	}
	return l.Logger.Record(le)
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var rawEntry json.RawMessage
		if err := decoder.Decode(&rawEntry); err != nil {
			return err
		}

		var s structpb.Struct
		if err := protojson.Unmarshal(rawEntry, &s); err != nil {
			return err
		}

		le, err := entryFromStruct(&s)
		if err != nil {
			return err
		}
		handler(le)
	}
	return nil
}

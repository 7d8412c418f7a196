package logging

import (
	"context"
	"maps"
	"sync"
)

// Entry is a single record captured by MemoryLogger.
type Entry struct {
	Level   Level
	Message string
	Err     error
	Fields  Fields
}

// MemoryLogger keeps log entries in memory. Loggers derived through
// WithFields share the same entry list.
type MemoryLogger struct {
	store  *memoryStore
	fields Fields
}

type memoryStore struct {
	mu      sync.Mutex
	level   Level
	entries []Entry
}

// NewMemoryLogger creates a logger that records every entry at or above
// DebugLevel.
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{
		store:  &memoryStore{level: DebugLevel},
		fields: make(Fields),
	}
}

// Entries returns a copy of the recorded entries.
func (m *MemoryLogger) Entries() []Entry {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	out := make([]Entry, len(m.store.entries))
	copy(out, m.store.entries)
	return out
}

func (m *MemoryLogger) record(level Level, err error, msg string, fields ...Fields) {
	all := make(Fields, len(m.fields))
	maps.Copy(all, m.fields)
	for _, f := range fields {
		maps.Copy(all, f)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if level < m.store.level {
		return
	}
	m.store.entries = append(m.store.entries, Entry{Level: level, Message: msg, Err: err, Fields: all})
}

func (m *MemoryLogger) Debug(msg string, fields ...Fields) { m.record(DebugLevel, nil, msg, fields...) }
func (m *MemoryLogger) Info(msg string, fields ...Fields)  { m.record(InfoLevel, nil, msg, fields...) }
func (m *MemoryLogger) Warn(msg string, fields ...Fields)  { m.record(WarnLevel, nil, msg, fields...) }

func (m *MemoryLogger) Error(err error, msg string, fields ...Fields) {
	m.record(ErrorLevel, err, msg, fields...)
}

// Fatal records the entry but does not exit.
func (m *MemoryLogger) Fatal(err error, msg string, fields ...Fields) {
	m.record(FatalLevel, err, msg, fields...)
}

func (m *MemoryLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields, len(m.fields)+len(fields))
	maps.Copy(newFields, m.fields)
	maps.Copy(newFields, fields)
	return &MemoryLogger{store: m.store, fields: newFields}
}

func (m *MemoryLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := fieldsFromContext(ctx); ok {
		return m.WithFields(fields)
	}
	return m
}

func (m *MemoryLogger) SetLevel(level Level) {
	m.store.mu.Lock()
	m.store.level = level
	m.store.mu.Unlock()
}

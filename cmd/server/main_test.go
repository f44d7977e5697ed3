package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"genie/internal/logger"
)

type syncCountingLogger struct {
	logger.Logger
	syncs int
}

func (l *syncCountingLogger) Sync() error {
	l.syncs++
	return nil
}

func TestFatal_FlushesBeforeExit(t *testing.T) {
	log := &syncCountingLogger{Logger: logger.NewNoOpLogger()}

	restore := exit
	t.Cleanup(func() { exit = restore })

	var code int
	syncsAtExit := -1
	exit = func(c int) {
		code = c
		syncsAtExit = log.syncs
	}

	fatal(log, "failed to initialise catalog", errors.New("connection refused"))

	assert.Equal(t, 1, code)
	assert.Equal(t, 1, syncsAtExit)
}

package mcp

import (
	"log"
	"strings"

	"github.com/roivaz/airtable-mcp/internal/logging"
)

// stdLogger adapts logging.Logger to the *log.Logger the stdio server
// reports transport errors through.
func stdLogger(l logging.Logger) *log.Logger {
	return log.New(logWriter{log: l.WithName("stdio")}, "", 0)
}

type logWriter struct {
	log logging.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

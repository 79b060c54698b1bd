package cmd

import (
	"fmt"
	"io"

	"log/slog"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
)

// Logger builds a logfmt structured logger over w at the given level,
// the same handler asterisc's driver uses for step-by-step diagnostics.
func Logger(w io.Writer, lvl slog.Level) log.Logger {
	return log.NewLogger(log.LogfmtHandlerWithLevel(w, lvl))
}

// LoggingWriter wraps a logger and exposes an io.Writer, so the
// simulated program's print-int/print-string ECALL output can flow
// through structured logging instead of straight to the terminal.
type LoggingWriter struct {
	Name string
	Log  log.Logger
}

func logAsText(b string) bool {
	for _, c := range b {
		if (c < 0x20 || c >= 0x7F) && (c != '\n' && c != '\t') {
			return false
		}
	}
	return true
}

func (lw *LoggingWriter) Write(b []byte) (int, error) {
	t := string(b)
	if logAsText(t) {
		lw.Log.Info(lw.Name, "text", t)
	} else {
		lw.Log.Info(lw.Name, "data", hexutil.Bytes(b))
	}
	return len(b), nil
}

// HexU32 lazily formats a 32-bit word as a fixed-width hex string for
// structured log fields (pc, instr, register values).
type HexU32 uint32

func (v HexU32) String() string {
	return fmt.Sprintf("0x%08x", uint32(v))
}

func (v HexU32) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

package rv32

import "io"

// Diagnostic describes a recoverable decode/execute anomaly: an unknown
// opcode, funct3/funct7 combination, or ECALL service number. The
// Executor reports these through the CPU's Diagnostic callback instead of
// returning an error, so the Driver can log-and-continue (spec §7).
type Diagnostic struct {
	PC      uint32
	Instr   uint32
	Opcode  uint32
	Funct3  uint32
	Funct7  uint32
	Message string
}

// CPU is the full machine state of spec §3: program counter, register
// file, memory, and the bookkeeping an interactive driver needs on top
// (halted flag, exit code, step counter). Grounded on asterisc's
// VMState (rvgo/fast/state.go), trimmed of the Heap/PreimageKey
// witness fields that only matter for fault proofs.
type CPU struct {
	PC   uint32
	Regs RegisterFile
	Mem  *Memory

	Halted   bool
	ExitCode uint32
	Steps    uint64

	// Strict turns an unknown opcode/funct3/funct7/ECALL service into a
	// StrictModeError instead of a logged diagnostic (spec §9).
	Strict bool

	// Diagnostic, if non-nil, is called once for every recoverable
	// anomaly encountered while not in Strict mode.
	Diagnostic func(Diagnostic)

	// Stdout backs the print-int/print-string ECALL services (spec §6);
	// no ECALL service writes to Stderr. Both default to io.Discard; the
	// Driver wires real writers (cmd/log.go's LoggingWriter or a raw
	// passthrough).
	Stdout io.Writer
	Stderr io.Writer
}

// NewCPU builds a CPU over the given memory. Stdout/Stderr default to
// io.Discard so a CPU built without Driver wiring is always safe to step.
func NewCPU(mem *Memory) *CPU {
	return &CPU{
		Mem:    mem,
		Stdout: io.Discard,
		Stderr: io.Discard,
	}
}

// StrictModeError is returned by Step when Strict is set and the
// instruction stream hits an anomaly that would otherwise be a logged
// diagnostic.
type StrictModeError struct {
	Diagnostic
}

func (e *StrictModeError) Error() string {
	return e.Message
}

func (c *CPU) diagnose(d Diagnostic) error {
	if c.Strict {
		return &StrictModeError{Diagnostic: d}
	}
	if c.Diagnostic != nil {
		c.Diagnostic(d)
	}
	return nil
}

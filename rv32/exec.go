package rv32

import "fmt"

// funct3 values shared across R-type and I-type arithmetic/logic ops
// (spec §4.3's opcode tables).
const (
	f3AddSub = 0x0
	f3Sll    = 0x1
	f3Slt    = 0x2
	f3Sltu   = 0x3
	f3Xor    = 0x4
	f3Srl    = 0x5
	f3Or     = 0x6
	f3And    = 0x7
)

// funct3 values for loads, stores, and branches.
const (
	f3Lb  = 0x0
	f3Lh  = 0x1
	f3Lw  = 0x2
	f3Lbu = 0x4
	f3Lhu = 0x5

	f3Sb = 0x0
	f3Sh = 0x1
	f3Sw = 0x2

	f3Beq  = 0x0
	f3Bne  = 0x1
	f3Blt  = 0x4
	f3Bge  = 0x5
	f3Bltu = 0x6
	f3Bgeu = 0x7
)

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Step fetches, decodes, and executes one instruction, advancing PC
// (unless the instruction itself redirected it) and incrementing Steps.
// It returns a non-nil error only for a fatal bus error or, in Strict
// mode, an unknown-encoding anomaly; a halted CPU must not be stepped
// again.
func (c *CPU) Step() error {
	if c.PC >= c.Mem.ProgramSize() {
		c.Halted = true
		return nil
	}

	instr, err := c.Mem.ReadWord(c.PC)
	if err != nil {
		return fmt.Errorf("fetch at pc 0x%08x: %w", c.PC, err)
	}

	d := Decode(instr)
	nextPC := c.PC + 4

	switch d.Format {
	case FormatR:
		err = c.execR(d)
	case FormatI:
		switch d.Opcode {
		case OpImm:
			err = c.execImm(d)
		case OpLoad:
			err = c.execLoad(d)
		case OpJalr:
			nextPC, err = c.execJalr(d)
		case OpSystem:
			err = c.execSystem(d)
		}
	case FormatS:
		err = c.execStore(d)
	case FormatB:
		var taken bool
		taken, err = c.evalBranch(d)
		if taken {
			nextPC = uint32(int32(c.PC) + d.Imm)
		}
	case FormatU:
		c.execUpper(d)
	case FormatJ:
		c.Regs.Write(d.Rd, nextPC)
		nextPC = uint32(int32(c.PC) + d.Imm)
	default:
		err = c.diagnose(Diagnostic{
			PC:      c.PC,
			Instr:   instr,
			Opcode:  d.Opcode,
			Message: fmt.Sprintf("unknown opcode 0x%02x at pc 0x%08x", d.Opcode, c.PC),
		})
	}
	if err != nil {
		return err
	}

	c.PC = nextPC
	c.Steps++
	return nil
}

func (c *CPU) execR(d Decoded) error {
	a := c.Regs.Read(d.Rs1)
	b := c.Regs.Read(d.Rs2)
	var out uint32

	switch d.Funct3 {
	case f3AddSub:
		switch d.Funct7 {
		case 0x00:
			out = a + b
		case 0x20:
			out = a - b
		default:
			return c.diagnose(unknownFunct7(c.PC, d))
		}
	case f3Sll:
		out = a << (b & 0x1F)
	case f3Slt:
		out = boolToWord(int32(a) < int32(b))
	case f3Sltu:
		out = boolToWord(a < b)
	case f3Xor:
		out = a ^ b
	case f3Srl:
		switch d.Funct7 {
		case 0x00:
			out = a >> (b & 0x1F)
		case 0x20:
			out = uint32(int32(a) >> (b & 0x1F))
		default:
			return c.diagnose(unknownFunct7(c.PC, d))
		}
	case f3Or:
		out = a | b
	case f3And:
		out = a & b
	default:
		return c.diagnose(unknownFunct3(c.PC, d))
	}
	c.Regs.Write(d.Rd, out)
	return nil
}

func (c *CPU) execImm(d Decoded) error {
	a := c.Regs.Read(d.Rs1)
	imm := uint32(d.Imm)
	var out uint32

	switch d.Funct3 {
	case f3AddSub:
		out = a + imm
	case f3Sll:
		out = a << (imm & 0x1F)
	case f3Slt:
		out = boolToWord(int32(a) < d.Imm)
	case f3Sltu:
		out = boolToWord(a < imm)
	case f3Xor:
		out = a ^ imm
	case f3Srl:
		switch d.Funct7 {
		case 0x00:
			out = a >> (imm & 0x1F)
		case 0x20:
			out = uint32(int32(a) >> (imm & 0x1F))
		default:
			return c.diagnose(unknownFunct7(c.PC, d))
		}
	case f3Or:
		out = a | imm
	case f3And:
		out = a & imm
	default:
		return c.diagnose(unknownFunct3(c.PC, d))
	}
	c.Regs.Write(d.Rd, out)
	return nil
}

func (c *CPU) execLoad(d Decoded) error {
	addr := uint32(int32(c.Regs.Read(d.Rs1)) + d.Imm)
	var out uint32

	switch d.Funct3 {
	case f3Lb:
		v, err := c.Mem.ReadByte(addr)
		if err != nil {
			return err
		}
		out = uint32(signExtend(uint32(v), 8))
	case f3Lh:
		v, err := c.Mem.ReadHalf(addr)
		if err != nil {
			return err
		}
		out = uint32(signExtend(uint32(v), 16))
	case f3Lw:
		v, err := c.Mem.ReadWord(addr)
		if err != nil {
			return err
		}
		out = v
	case f3Lbu:
		v, err := c.Mem.ReadByte(addr)
		if err != nil {
			return err
		}
		out = uint32(v)
	case f3Lhu:
		v, err := c.Mem.ReadHalf(addr)
		if err != nil {
			return err
		}
		out = uint32(v)
	default:
		return c.diagnose(unknownFunct3(c.PC, d))
	}
	c.Regs.Write(d.Rd, out)
	return nil
}

func (c *CPU) execStore(d Decoded) error {
	addr := uint32(int32(c.Regs.Read(d.Rs1)) + d.Imm)
	v := c.Regs.Read(d.Rs2)

	switch d.Funct3 {
	case f3Sb:
		return c.Mem.WriteByte(addr, uint8(v))
	case f3Sh:
		return c.Mem.WriteHalf(addr, uint16(v))
	case f3Sw:
		return c.Mem.WriteWord(addr, v)
	default:
		return c.diagnose(unknownFunct3(c.PC, d))
	}
}

func (c *CPU) evalBranch(d Decoded) (bool, error) {
	a := c.Regs.Read(d.Rs1)
	b := c.Regs.Read(d.Rs2)

	switch d.Funct3 {
	case f3Beq:
		return a == b, nil
	case f3Bne:
		return a != b, nil
	case f3Blt:
		return int32(a) < int32(b), nil
	case f3Bge:
		return int32(a) >= int32(b), nil
	case f3Bltu:
		return a < b, nil
	case f3Bgeu:
		return a >= b, nil
	default:
		return false, c.diagnose(unknownFunct3(c.PC, d))
	}
}

func (c *CPU) execUpper(d Decoded) {
	switch d.Opcode {
	case OpLui:
		c.Regs.Write(d.Rd, uint32(d.Imm))
	case OpAuipc:
		c.Regs.Write(d.Rd, c.PC+uint32(d.Imm))
	}
}

func (c *CPU) execJalr(d Decoded) (uint32, error) {
	target := uint32(int32(c.Regs.Read(d.Rs1))+d.Imm) &^ 1
	c.Regs.Write(d.Rd, c.PC+4)
	return target, nil
}

func (c *CPU) execSystem(d Decoded) error {
	if d.Imm != 0 {
		// EBREAK and other non-zero SYSTEM immediates are outside this
		// simulator's scope (spec §1's Non-goals); treat as a diagnostic.
		return c.diagnose(Diagnostic{
			PC:      c.PC,
			Instr:   d.Raw,
			Opcode:  d.Opcode,
			Message: fmt.Sprintf("unsupported system instruction at pc 0x%08x", c.PC),
		})
	}
	return c.ecall(d)
}

// ecall dispatches on a7 (x17) per spec §6's four-service minimal ABI.
func (c *CPU) ecall(d Decoded) error {
	service := c.Regs.Read(RegA7)
	a0 := c.Regs.Read(RegA0)

	switch service {
	case SysPrintInt:
		fmt.Fprintf(c.Stdout, "%d", int32(a0))
	case SysPrintString:
		s, err := c.readCString(a0)
		if err != nil {
			return err
		}
		fmt.Fprint(c.Stdout, s)
	case SysExit:
		c.Halted = true
		c.ExitCode = 0
	case SysExitCode:
		c.Halted = true
		c.ExitCode = a0
	default:
		return c.diagnose(Diagnostic{
			PC:      c.PC,
			Instr:   d.Raw,
			Opcode:  OpSystem,
			Message: fmt.Sprintf("unknown ecall service a7=%d at pc 0x%08x", service, c.PC),
		})
	}
	return nil
}

// readCString reads a NUL-terminated string starting at addr, for the
// print-string ECALL service.
func (c *CPU) readCString(addr uint32) (string, error) {
	var buf []byte
	for {
		b, err := c.Mem.ReadByte(addr)
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
		addr++
	}
	return string(buf), nil
}

func unknownFunct3(pc uint32, d Decoded) Diagnostic {
	return Diagnostic{
		PC:      pc,
		Instr:   d.Raw,
		Opcode:  d.Opcode,
		Funct3:  d.Funct3,
		Message: fmt.Sprintf("unknown funct3 0x%x for opcode 0x%02x at pc 0x%08x", d.Funct3, d.Opcode, pc),
	}
}

func unknownFunct7(pc uint32, d Decoded) Diagnostic {
	return Diagnostic{
		PC:      pc,
		Instr:   d.Raw,
		Opcode:  d.Opcode,
		Funct3:  d.Funct3,
		Funct7:  d.Funct7,
		Message: fmt.Sprintf("unknown funct7 0x%x for opcode 0x%02x funct3 0x%x at pc 0x%08x", d.Funct7, d.Opcode, d.Funct3, pc),
	}
}

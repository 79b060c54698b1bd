package rv32

// Format identifies which of RV32I's six instruction-word layouts produced
// a Decoded value (spec §4.3).
type Format uint8

const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	default:
		return "Unknown"
	}
}

// Decoded is the tagged, format-specific reconstruction of a 32-bit
// instruction word. Only the fields relevant to Format are meaningful;
// Imm is always fully sign-extended to 32 bits except for U-type, where
// it is already shifted into the upper 20 bits per spec §4.3.
type Decoded struct {
	Raw    uint32
	Opcode uint32
	Format Format

	Rd     uint32
	Rs1    uint32
	Rs2    uint32
	Funct3 uint32
	Funct7 uint32
	Imm    int32
}

func parseOpcode(instr uint32) uint32 { return instr & 0x7F }
func parseRd(instr uint32) uint32     { return (instr >> 7) & 0x1F }
func parseFunct3(instr uint32) uint32 { return (instr >> 12) & 0x7 }
func parseRs1(instr uint32) uint32    { return (instr >> 15) & 0x1F }
func parseRs2(instr uint32) uint32    { return (instr >> 20) & 0x1F }
func parseFunct7(instr uint32) uint32 { return (instr >> 25) & 0x7F }

// signExtend treats the low `bits` bits of v as two's complement and
// extends the result to 32 bits, per spec §9's shift-based recipe: shift
// the value so its sign bit lands at bit 31, then arithmetic-shift back.
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

func parseImmTypeI(instr uint32) int32 {
	return signExtend(instr>>20, 12)
}

func parseImmTypeS(instr uint32) int32 {
	imm := ((instr >> 25 & 0x7F) << 5) | (instr >> 7 & 0x1F)
	return signExtend(imm, 12)
}

func parseImmTypeB(instr uint32) int32 {
	imm := (instr>>31&1)<<12 | (instr>>7&1)<<11 | (instr>>25&0x3F)<<5 | (instr>>8&0xF)<<1
	return signExtend(imm, 13)
}

func parseImmTypeU(instr uint32) int32 {
	return int32(instr & 0xFFFFF000)
}

func parseImmTypeJ(instr uint32) int32 {
	imm := (instr>>31&1)<<20 | (instr>>12&0xFF)<<12 | (instr>>20&1)<<11 | (instr>>21&0x3FF)<<1
	return signExtend(imm, 21)
}

// Decode is a pure, total function from a 32-bit instruction word to its
// tagged decoded form (spec §4.3). It never fails: an unrecognised opcode
// decodes to FormatUnknown, leaving the diagnose-and-continue policy to
// the Executor.
func Decode(instr uint32) Decoded {
	opcode := parseOpcode(instr)
	d := Decoded{Raw: instr, Opcode: opcode}

	switch opcode {
	case OpR:
		d.Format = FormatR
		d.Funct7 = parseFunct7(instr)
		d.Rs2 = parseRs2(instr)
		d.Rs1 = parseRs1(instr)
		d.Funct3 = parseFunct3(instr)
		d.Rd = parseRd(instr)
	case OpImm, OpLoad, OpJalr, OpSystem:
		d.Format = FormatI
		d.Rd = parseRd(instr)
		d.Funct3 = parseFunct3(instr)
		d.Rs1 = parseRs1(instr)
		d.Imm = parseImmTypeI(instr)
		// SRLI/SRAI (opcode OpImm, funct3 f3Srl) repurpose the immediate's
		// top 7 bits as an R-type-style funct7 to pick the shift variant.
		d.Funct7 = parseFunct7(instr)
	case OpStore:
		d.Format = FormatS
		d.Funct3 = parseFunct3(instr)
		d.Rs1 = parseRs1(instr)
		d.Rs2 = parseRs2(instr)
		d.Imm = parseImmTypeS(instr)
	case OpBranch:
		d.Format = FormatB
		d.Funct3 = parseFunct3(instr)
		d.Rs1 = parseRs1(instr)
		d.Rs2 = parseRs2(instr)
		d.Imm = parseImmTypeB(instr)
	case OpLui, OpAuipc:
		d.Format = FormatU
		d.Rd = parseRd(instr)
		d.Imm = parseImmTypeU(instr)
	case OpJal:
		d.Format = FormatJ
		d.Rd = parseRd(instr)
		d.Imm = parseImmTypeJ(instr)
	default:
		d.Format = FormatUnknown
	}
	return d
}

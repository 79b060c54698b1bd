package rv32

// Opcodes are the low 7 bits of every RV32I instruction word (spec §4.3).
const (
	OpR      = 0x33 // register-register arithmetic/logic
	OpImm    = 0x13 // register-immediate arithmetic/logic
	OpLoad   = 0x03 // LB/LH/LW/LBU/LHU
	OpStore  = 0x23 // SB/SH/SW
	OpBranch = 0x63 // BEQ/BNE/BLT/BGE/BLTU/BGEU
	OpLui    = 0x37 // LUI
	OpAuipc  = 0x17 // AUIPC
	OpJal    = 0x6F // JAL
	OpJalr   = 0x67 // JALR
	OpSystem = 0x73 // ECALL/EBREAK
)

// ECALL service numbers, selected by a7 (x17). See spec §6.
const (
	SysPrintInt    = 1
	SysPrintString = 4
	SysExit        = 10
	SysExitCode    = 93
)

// ABI register indices used by the ECALL convention and by the Driver's
// stack-pointer initialisation policy (spec §6, §9).
const (
	RegSP = 2
	RegA0 = 10
	RegA7 = 17
)

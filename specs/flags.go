package specs

// Flag bits, independently testable by jump instructions.
const (
	FlagEqual            Word = 1
	FlagNotEqual         Word = 2
	FlagGreater          Word = 4
	FlagLess             Word = 8
	FlagGreaterOrEqual   Word = 16
	FlagLessOrEqual      Word = 32
)

// Trichotomy patterns written to the flags register by a compare: exactly
// one of these is ever the stored value after CMP/CMPI/CMPD.
const (
	FlagsEqual   = FlagEqual | FlagGreaterOrEqual | FlagLessOrEqual // 49
	FlagsGreater = FlagNotEqual | FlagGreater | FlagGreaterOrEqual  // 22
	FlagsLess    = FlagNotEqual | FlagLess | FlagLessOrEqual        // 42
)

// ConditionBits maps a jump mnemonic's condition to the flag bits that
// must have at least one set for the jump to be taken.
var ConditionBits = map[Code]Word{
	JEQ: FlagEqual,
	JNE: FlagNotEqual,
	JG:  FlagGreater,
	JL:  FlagLess,
	JGE: FlagGreaterOrEqual,
	JLE: FlagLessOrEqual,
}

package specs

// ConstType identifies the type tag stored before every constant-pool value.
type ConstType Word

const (
	UINT32 ConstType = 0
	UINT64 ConstType = 1
	DOUBLE ConstType = 2
	CHAR   ConstType = 3
	STRING ConstType = 4
)

func (t ConstType) String() string {
	switch t {
	case UINT32:
		return "uint32"
	case UINT64:
		return "uint64"
	case DOUBLE:
		return "double"
	case CHAR:
		return "char"
	case STRING:
		return "string"
	default:
		return "?"
	}
}

// ConstTypeByName maps the lowercase source keyword to its ConstType.
var ConstTypeByName = map[string]ConstType{
	"uint32": UINT32,
	"uint64": UINT64,
	"double": DOUBLE,
	"char":   CHAR,
	"string": STRING,
}

const (
	CharQuote     = '\''
	StringQuote   = '"'
	DoublePrec    = 15
	StringEndWord = Word(0)
)

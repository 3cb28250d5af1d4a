package config

const Version = "0.3.0"

const SourceFileExt = ".ul"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".ul", ".lisp"}

// DefaultMaxDepth bounds the nesting of evaluate calls.
const DefaultMaxDepth = 10000

// Built-in function names
const (
	VarFuncName    = "var"
	FuncFuncName   = "func"
	TypeOfFuncName = "typeof"
	IfFuncName     = "if"
	WhileFuncName  = "while"
	EqFuncName     = "eq"
	NeFuncName     = "ne"
	LtFuncName     = "lt"
	GtFuncName     = "gt"
	LeFuncName     = "le"
	GeFuncName     = "ge"
	AddFuncName    = "add"
	SubFuncName    = "sub"
	MulFuncName    = "mul"
	DivFuncName    = "div"
	ConcatFuncName = "concat"
	PrintFuncName  = "print"
)

// Host defaults
const (
	DefaultPrompt       = "lisp> "
	DefaultContinuation = "...   "
	DefaultHistoryFile  = ".ul_history.db"
	DefaultServeAddr    = "127.0.0.1:7433"
	QuitCommand         = "quit"

	ConfigEnvVar = "UL_CONFIG"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

package types

type OpKind int

const (
	OpNone OpKind = iota

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpLogAnd
	OpLogOr

	OpNeg
	OpPlus
	OpNot
	OpBitNot
	OpPreInc
	OpPreDec
	OpPostInc
	OpPostDec

	OpMember
	OpIndex
	OpCall
	OpNewObject
	OpNewArray

	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
	OpAndAssign
	OpOrAssign
	OpXorAssign
	OpShlAssign
	OpShrAssign

	OpCast
)

type Assoc int

const (
	Left Assoc = iota
	Right
)

// Operation describes how an operator token behaves in the shunting-yard and
// in the tree builder.
type Operation struct {
	Kind  OpKind
	Prec  int
	Assoc Assoc
	Arity int
	// Args is the pre-counted argument count of a call marker.
	Args int
	// Dims is the number of trailing rank specifiers of a new-array marker.
	Dims int
}

const (
	PrecAssign = iota + 1
	PrecLogOr
	PrecLogAnd
	PrecBitOr
	PrecBitXor
	PrecBitAnd
	PrecEquality
	PrecCompare
	PrecShift
	PrecTerm
	PrecFactor
	PrecUnary
	PrecPostfix
	PrecMember
	PrecNew
)

var operations = map[OpKind]Operation{
	OpAdd:    {OpAdd, PrecTerm, Left, 2, 0, 0},
	OpSub:    {OpSub, PrecTerm, Left, 2, 0, 0},
	OpMul:    {OpMul, PrecFactor, Left, 2, 0, 0},
	OpDiv:    {OpDiv, PrecFactor, Left, 2, 0, 0},
	OpMod:    {OpMod, PrecFactor, Left, 2, 0, 0},
	OpBitAnd: {OpBitAnd, PrecBitAnd, Left, 2, 0, 0},
	OpBitOr:  {OpBitOr, PrecBitOr, Left, 2, 0, 0},
	OpBitXor: {OpBitXor, PrecBitXor, Left, 2, 0, 0},
	OpShl:    {OpShl, PrecShift, Left, 2, 0, 0},
	OpShr:    {OpShr, PrecShift, Left, 2, 0, 0},
	OpLt:     {OpLt, PrecCompare, Left, 2, 0, 0},
	OpLe:     {OpLe, PrecCompare, Left, 2, 0, 0},
	OpGt:     {OpGt, PrecCompare, Left, 2, 0, 0},
	OpGe:     {OpGe, PrecCompare, Left, 2, 0, 0},
	OpEq:     {OpEq, PrecEquality, Left, 2, 0, 0},
	OpNe:     {OpNe, PrecEquality, Left, 2, 0, 0},
	OpLogAnd: {OpLogAnd, PrecLogAnd, Left, 2, 0, 0},
	OpLogOr:  {OpLogOr, PrecLogOr, Left, 2, 0, 0},

	OpNeg:     {OpNeg, PrecUnary, Right, 1, 0, 0},
	OpPlus:    {OpPlus, PrecUnary, Right, 1, 0, 0},
	OpNot:     {OpNot, PrecUnary, Right, 1, 0, 0},
	OpBitNot:  {OpBitNot, PrecUnary, Right, 1, 0, 0},
	OpPreInc:  {OpPreInc, PrecUnary, Right, 1, 0, 0},
	OpPreDec:  {OpPreDec, PrecUnary, Right, 1, 0, 0},
	OpPostInc: {OpPostInc, PrecPostfix, Right, 1, 0, 0},
	OpPostDec: {OpPostDec, PrecPostfix, Right, 1, 0, 0},

	OpMember:    {OpMember, PrecMember, Left, 2, 0, 0},
	OpIndex:     {OpIndex, PrecMember, Left, 2, 0, 0},
	OpCall:      {OpCall, PrecMember, Left, -1, 0, 0},
	OpNewObject: {OpNewObject, PrecNew, Right, 1, 0, 0},
	OpNewArray:  {OpNewArray, PrecNew, Right, 1, 0, 0},

	OpAssign:    {OpAssign, PrecAssign, Right, 2, 0, 0},
	OpAddAssign: {OpAddAssign, PrecAssign, Right, 2, 0, 0},
	OpSubAssign: {OpSubAssign, PrecAssign, Right, 2, 0, 0},
	OpMulAssign: {OpMulAssign, PrecAssign, Right, 2, 0, 0},
	OpDivAssign: {OpDivAssign, PrecAssign, Right, 2, 0, 0},
	OpModAssign: {OpModAssign, PrecAssign, Right, 2, 0, 0},
	OpAndAssign: {OpAndAssign, PrecAssign, Right, 2, 0, 0},
	OpOrAssign:  {OpOrAssign, PrecAssign, Right, 2, 0, 0},
	OpXorAssign: {OpXorAssign, PrecAssign, Right, 2, 0, 0},
	OpShlAssign: {OpShlAssign, PrecAssign, Right, 2, 0, 0},
	OpShrAssign: {OpShrAssign, PrecAssign, Right, 2, 0, 0},

	OpCast: {OpCast, PrecUnary, Right, 1, 0, 0},
}

// Op returns the descriptor for an operator kind.
func Op(kind OpKind) Operation {
	return operations[kind]
}

var binarySymbols = map[string]OpKind{
	"+":  OpAdd,
	"-":  OpSub,
	"*":  OpMul,
	"/":  OpDiv,
	"%":  OpMod,
	"&":  OpBitAnd,
	"|":  OpBitOr,
	"^":  OpBitXor,
	"<<": OpShl,
	">>": OpShr,
	"<":  OpLt,
	"<=": OpLe,
	">":  OpGt,
	">=": OpGe,
	"==": OpEq,
	"!=": OpNe,
	"&&": OpLogAnd,
	"||": OpLogOr,
	"!":  OpNot,
	"~":  OpBitNot,
	"++": OpPostInc,
	"--": OpPostDec,
	".":  OpMember,

	"=":   OpAssign,
	"+=":  OpAddAssign,
	"-=":  OpSubAssign,
	"*=":  OpMulAssign,
	"/=":  OpDivAssign,
	"%=":  OpModAssign,
	"&=":  OpAndAssign,
	"|=":  OpOrAssign,
	"^=":  OpXorAssign,
	"<<=": OpShlAssign,
	">>=": OpShrAssign,
}

// OpForSymbol resolves the default (binary or postfix) operation of an
// operator symbol.
func OpForSymbol(sym string) (Operation, bool) {
	kind, ok := binarySymbols[sym]
	if !ok {
		return Operation{}, false
	}
	return operations[kind], true
}

// Prefix returns the unary prefix form of an operation that has one.
func (o Operation) Prefix() (Operation, bool) {
	switch o.Kind {
	case OpSub, OpNeg:
		return operations[OpNeg], true
	case OpAdd, OpPlus:
		return operations[OpPlus], true
	case OpPostInc, OpPreInc:
		return operations[OpPreInc], true
	case OpPostDec, OpPreDec:
		return operations[OpPreDec], true
	case OpNot, OpBitNot:
		return o, true
	}
	return o, false
}

// Compound maps a compound assignment to the binary operation it applies.
func (o Operation) Compound() (Operation, bool) {
	switch o.Kind {
	case OpAddAssign:
		return operations[OpAdd], true
	case OpSubAssign:
		return operations[OpSub], true
	case OpMulAssign:
		return operations[OpMul], true
	case OpDivAssign:
		return operations[OpDiv], true
	case OpModAssign:
		return operations[OpMod], true
	case OpAndAssign:
		return operations[OpBitAnd], true
	case OpOrAssign:
		return operations[OpBitOr], true
	case OpXorAssign:
		return operations[OpBitXor], true
	case OpShlAssign:
		return operations[OpShl], true
	case OpShrAssign:
		return operations[OpShr], true
	}
	return Operation{}, false
}

func (o Operation) IsAssign() bool {
	return o.Kind >= OpAssign && o.Kind <= OpShrAssign
}

func (o Operation) IsIncDec() bool {
	return o.Kind >= OpPreInc && o.Kind <= OpPostDec
}

func (o Operation) IsPrefixOnly() bool {
	switch o.Kind {
	case OpNeg, OpPlus, OpNot, OpBitNot, OpPreInc, OpPreDec:
		return true
	}
	return false
}

var opNames = map[OpKind]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpBitAnd: "&", OpBitOr: "|", OpBitXor: "^", OpShl: "<<", OpShr: ">>",
	OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=", OpEq: "==", OpNe: "!=",
	OpLogAnd: "&&", OpLogOr: "||",
	OpNeg: "-", OpPlus: "+", OpNot: "!", OpBitNot: "~",
	OpPreInc: "++", OpPreDec: "--", OpPostInc: "++", OpPostDec: "--",
	OpMember: ".", OpIndex: "[]", OpCall: "call", OpNewObject: "new", OpNewArray: "new[]",
	OpAssign: "=", OpAddAssign: "+=", OpSubAssign: "-=", OpMulAssign: "*=",
	OpDivAssign: "/=", OpModAssign: "%=", OpAndAssign: "&=", OpOrAssign: "|=",
	OpXorAssign: "^=", OpShlAssign: "<<=", OpShrAssign: ">>=",
	OpCast: "cast",
}

func (k OpKind) String() string {
	if s, ok := opNames[k]; ok {
		return s
	}
	return "?"
}

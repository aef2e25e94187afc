package vm

import (
	"fmt"

	"github.com/stoewer/go-strcase"
)

type Operation byte

const (
	OpPush        Operation = iota //00 - push the count of the operand line
	OpPrintInt                     //01 - pop, write decimal integer
	OpPrintChar                    //02 - pop, write unicode character
	OpPushZero                     //03 - push 0
	OpPop                          //04 - pop and discard
	OpDup                          //05 - duplicate the top
	OpAdd                          //06 - a + b, strings concatenate
	OpSub                          //07 - a - b
	OpMul                          //08 - a * b
	OpDiv                          //09 - a / b truncated
	OpGreater                      //10 - a > b
	OpLess                         //11 - a < b
	OpEqual                        //12 - a == b
	OpAnd                          //13 - both truthy
	OpOr                           //14 - either truthy
	OpNot                          //15 - not truthy
	OpJump                         //16 - go to the line named by the operand
	OpJumpIf                       //17 - pop condition, jump to operand line if truthy
	OpReadInt                      //18 - read decimal integer
	OpReadChar                     //19 - read unicode character
	OpHalt                         //20 - stop
	OpChicken                      //21 - push "chicken"
	OpLoad                         //22 - pop index, push element of the source named by the operand
	OpStore                        //23 - pop address, pop value, write value at address
	OpRelJump                      //24 - pop offset, pop condition, move relative to next line
	OpChar                         //25 - pop code point, push one-character string
	OpPushLiteral                  //26 - push the instruction's literal
)

var opNames = [...]string{
	OpPush:        "Push",
	OpPrintInt:    "PrintInt",
	OpPrintChar:   "PrintChar",
	OpPushZero:    "PushZero",
	OpPop:         "Pop",
	OpDup:         "Dup",
	OpAdd:         "Add",
	OpSub:         "Sub",
	OpMul:         "Mul",
	OpDiv:         "Div",
	OpGreater:     "Greater",
	OpLess:        "Less",
	OpEqual:       "Equal",
	OpAnd:         "And",
	OpOr:          "Or",
	OpNot:         "Not",
	OpJump:        "Jump",
	OpJumpIf:      "JumpIf",
	OpReadInt:     "ReadInt",
	OpReadChar:    "ReadChar",
	OpHalt:        "Halt",
	OpChicken:     "Chicken",
	OpLoad:        "Load",
	OpStore:       "Store",
	OpRelJump:     "RelJump",
	OpChar:        "Char",
	OpPushLiteral: "PushLiteral",
}

// String returns the kebab-case mnemonic, e.g. "print-int".
func (op Operation) String() string {
	if int(op) < len(opNames) {
		return strcase.KebabCase(opNames[op])
	}
	return fmt.Sprintf("op(%d)", byte(op))
}

// hasOperand reports whether the operation consumes the following line.
func (op Operation) hasOperand() bool {
	switch op {
	case OpPush, OpJump, OpJumpIf, OpLoad:
		return true
	default:
		return false
	}
}

// Instruction is a bound operation with its literal argument, if any.
type Instruction struct {
	Op  Operation
	Arg int64
}

func (i Instruction) String() string {
	if i.Op == OpPushLiteral {
		return fmt.Sprintf("%s %d", i.Op, i.Arg)
	}
	return i.Op.String()
}

package spirv

import "fmt"

// ErrorKind categorizes frontend errors. The zero value is not a kind.
type ErrorKind uint8

const (
	// Malformed stream.

	ErrInvalidHeader ErrorKind = iota + 1
	ErrIncompleteData
	ErrInvalidWordCount
	ErrUnknownInstruction
	ErrInvalidOperandCount
	ErrBadString

	// Unsupported features.

	ErrUnknownCapability
	ErrUnsupportedInstruction
	ErrUnsupportedCapability
	ErrUnsupportedExtension
	ErrUnsupportedExtSet
	ErrUnsupportedExtInst
	ErrUnsupportedExecutionModel
	ErrUnsupportedExecutionMode
	ErrUnsupportedStorageClass
	ErrUnsupportedImageDim
	ErrUnsupportedImageFormat
	ErrUnsupportedBuiltIn
	ErrUnsupportedType
	ErrUnsupportedMatrixStride
	ErrUnsupportedRuntimeArrayStorageClass

	// Id resolution and operand validation.

	ErrInvalidID
	ErrInvalidInnerType
	ErrInvalidTypeWidth
	ErrInvalidSign
	ErrInvalidVectorSize
	ErrInvalidDecoration
	ErrInvalidAccessType
	ErrInvalidAccess
	ErrInvalidAccessIndex
	ErrInvalidOperand
	ErrInvalidAsType
	ErrInvalidImageExpression
	ErrInvalidTerminator
	ErrInvalidBarrierScope
	ErrWrongFunctionResultType
	ErrWrongFunctionArgumentType

	// Structural consistency.

	ErrFunctionCallCycle
	ErrAtomicUpgrade
	ErrInconsistentComparisonSampling
	ErrNonBindingArrayOfImageOrSamplers
	ErrSpecIDTooHigh
)

var errorKindNames = [...]string{
	ErrInvalidHeader:                       "InvalidHeader",
	ErrIncompleteData:                      "IncompleteData",
	ErrInvalidWordCount:                    "InvalidWordCount",
	ErrUnknownInstruction:                  "UnknownInstruction",
	ErrInvalidOperandCount:                 "InvalidOperandCount",
	ErrBadString:                           "BadString",
	ErrUnknownCapability:                   "UnknownCapability",
	ErrUnsupportedInstruction:              "UnsupportedInstruction",
	ErrUnsupportedCapability:               "UnsupportedCapability",
	ErrUnsupportedExtension:                "UnsupportedExtension",
	ErrUnsupportedExtSet:                   "UnsupportedExtSet",
	ErrUnsupportedExtInst:                  "UnsupportedExtInst",
	ErrUnsupportedExecutionModel:           "UnsupportedExecutionModel",
	ErrUnsupportedExecutionMode:            "UnsupportedExecutionMode",
	ErrUnsupportedStorageClass:             "UnsupportedStorageClass",
	ErrUnsupportedImageDim:                 "UnsupportedImageDim",
	ErrUnsupportedImageFormat:              "UnsupportedImageFormat",
	ErrUnsupportedBuiltIn:                  "UnsupportedBuiltIn",
	ErrUnsupportedType:                     "UnsupportedType",
	ErrUnsupportedMatrixStride:             "UnsupportedMatrixStride",
	ErrUnsupportedRuntimeArrayStorageClass: "UnsupportedRuntimeArrayStorageClass",
	ErrInvalidID:                           "InvalidId",
	ErrInvalidInnerType:                    "InvalidInnerType",
	ErrInvalidTypeWidth:                    "InvalidTypeWidth",
	ErrInvalidSign:                         "InvalidSign",
	ErrInvalidVectorSize:                   "InvalidVectorSize",
	ErrInvalidDecoration:                   "InvalidDecoration",
	ErrInvalidAccessType:                   "InvalidAccessType",
	ErrInvalidAccess:                       "InvalidAccess",
	ErrInvalidAccessIndex:                  "InvalidAccessIndex",
	ErrInvalidOperand:                      "InvalidOperand",
	ErrInvalidAsType:                       "InvalidAsType",
	ErrInvalidImageExpression:              "InvalidImageExpression",
	ErrInvalidTerminator:                   "InvalidTerminator",
	ErrInvalidBarrierScope:                 "InvalidBarrierScope",
	ErrWrongFunctionResultType:             "WrongFunctionResultType",
	ErrWrongFunctionArgumentType:           "WrongFunctionArgumentType",
	ErrFunctionCallCycle:                   "FunctionCallCycle",
	ErrAtomicUpgrade:                       "AtomicUpgrade",
	ErrInconsistentComparisonSampling:      "InconsistentComparisonSampling",
	ErrNonBindingArrayOfImageOrSamplers:    "NonBindingArrayOfImageOrSamplers",
	ErrSpecIDTooHigh:                       "SpecIdTooHigh",
}

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) && errorKindNames[k] != "" {
		return errorKindNames[k]
	}
	return "Unknown"
}

// Error is a terminal frontend error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// Offset is the word offset of the offending instruction, or -1 when
	// the error is not tied to one.
	Offset int

	// Cause is the error of a module pass that this error reports, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("spirv %s at word %d: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("spirv %s: %s", e.Kind, e.Message)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: -1}
}

// wrapError reports cause under kind, keeping it reachable through
// errors.As.
func wrapError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Message: cause.Error(), Offset: -1, Cause: cause}
}

func unsupportedInstruction(phase ModulePhase, op OpCode) *Error {
	return newError(ErrUnsupportedInstruction, "%v in phase %v", op, phase)
}

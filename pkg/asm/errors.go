package asm

import "fmt"

// ParseError is a lexical or grammatical failure: malformed token stream,
// unexpected token. Line is 1-based, 0 if unknown.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// AnalysisError is a semantic failure after a successful parse: undefined
// symbol, duplicate label, bad operand shape for its opcode.
type AnalysisError struct {
	Line    int
	Message string
}

func (e *AnalysisError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("analysis error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("analysis error: %s", e.Message)
}

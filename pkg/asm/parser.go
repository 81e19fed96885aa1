package asm

import (
	"strconv"
	"strings"

	"github.com/eberaud/oooarm/pkg/isa"
)

// Parse turns assembly source text into an isa.Program, or returns a
// *ParseError / *AnalysisError. This is the program loader collaborator
// spec.md §6 describes only by interface; SPEC_FULL.md implements it fully
// since a simulator nobody can feed a program into is not a complete repo.
//
// Syntax: case-insensitive mnemonics, an optional `.data` section of
// `NAME: .dword VALUE` entries, a `.text` section of optional `label:`
// prefixes and instructions terminated by `;`. Operands: `rN`/`lr`/`sp`
// register, `#imm` decimal immediate, `=label` data address, `[rN]`
// indirect register (address), bare `label` branch target.
func Parse(src string) (isa.Program, error) {
	toks, err := lex(src)
	if err != nil {
		return isa.Program{}, err
	}
	p := &parser{toks: toks}
	return p.parseProgram()
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token  { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind, what string) (token, error) {
	t := p.peek()
	if t.kind != k {
		return token{}, &ParseError{Line: t.line, Message: "expected " + what + ", got '" + t.text + "'"}
	}
	return p.advance(), nil
}

// rawOperand defers label resolution to a second pass over the whole
// program, the way a two-pass assembler resolves forward references.
type rawOperandKind int

const (
	rawReg rawOperandKind = iota
	rawImm
	rawDataRef
	rawCodeRef
)

type rawOperand struct {
	kind rawOperandKind
	reg  isa.RegID
	imm  isa.Word
	name string
}

type rawInstruction struct {
	op   isa.Opcode
	args []rawOperand
	line int
}

func (p *parser) parseProgram() (isa.Program, error) {
	dataItems := map[string]isa.DataItem{}
	var dataOrder []string

	if p.peek().kind == tokDirective && p.peek().text == ".data" {
		p.advance()
		var offset uint32
		for p.peek().kind == tokIdent {
			nameTok := p.advance()
			if _, err := p.expect(tokColon, "':'"); err != nil {
				return isa.Program{}, err
			}
			dirTok, err := p.expect(tokDirective, "'.dword'")
			if err != nil {
				return isa.Program{}, err
			}
			if dirTok.text != ".dword" {
				return isa.Program{}, &ParseError{Line: dirTok.line, Message: "expected .dword, got " + dirTok.text}
			}
			numTok, err := p.expect(tokNumber, "a number")
			if err != nil {
				return isa.Program{}, err
			}
			v, err := strconv.ParseInt(numTok.text, 10, 32)
			if err != nil {
				return isa.Program{}, &ParseError{Line: numTok.line, Message: "bad integer literal " + numTok.text}
			}
			if _, dup := dataItems[nameTok.text]; dup {
				return isa.Program{}, &AnalysisError{Line: nameTok.line, Message: "duplicate data item " + nameTok.text}
			}
			dataItems[nameTok.text] = isa.DataItem{Offset: offset, Initial: isa.Word(v)}
			dataOrder = append(dataOrder, nameTok.text)
			offset++
		}
	}

	dirTok, err := p.expect(tokDirective, "'.text'")
	if err != nil {
		return isa.Program{}, err
	}
	if dirTok.text != ".text" {
		return isa.Program{}, &ParseError{Line: dirTok.line, Message: "expected .text, got " + dirTok.text}
	}

	labels := map[string]uint32{}
	var raws []rawInstruction

	for p.peek().kind != tokEOF {
		if p.peek().kind == tokIdent && p.toks[p.pos+1].kind == tokColon {
			labelTok := p.advance()
			p.advance() // colon
			if _, dup := labels[labelTok.text]; dup {
				return isa.Program{}, &AnalysisError{Line: labelTok.line, Message: "duplicate label " + labelTok.text}
			}
			labels[labelTok.text] = uint32(len(raws))
			continue
		}
		ri, err := p.parseInstruction()
		if err != nil {
			return isa.Program{}, err
		}
		raws = append(raws, ri)
	}

	code := make([]isa.Instruction, len(raws))
	for i, ri := range raws {
		ins, err := build(ri, dataItems, labels)
		if err != nil {
			return isa.Program{}, err
		}
		code[i] = ins
	}

	return isa.Program{Code: code, DataItems: dataItems, DataOrder: dataOrder}, nil
}

func (p *parser) parseInstruction() (rawInstruction, error) {
	mnTok, err := p.expect(tokIdent, "a mnemonic")
	if err != nil {
		return rawInstruction{}, err
	}
	op, ok := lookupMnemonic(mnTok.text)
	if !ok {
		return rawInstruction{}, &ParseError{Line: mnTok.line, Message: "unknown mnemonic " + mnTok.text}
	}

	var args []rawOperand
	for p.peek().kind != tokSemi {
		if len(args) > 0 {
			if _, err := p.expect(tokComma, "','"); err != nil {
				return rawInstruction{}, err
			}
		}
		operand, err := p.parseOperand()
		if err != nil {
			return rawInstruction{}, err
		}
		args = append(args, operand)
	}
	semi, _ := p.expect(tokSemi, "';'")
	return rawInstruction{op: op, args: args, line: semi.line}, nil
}

func (p *parser) parseOperand() (rawOperand, error) {
	t := p.peek()
	switch t.kind {
	case tokHash:
		p.advance()
		numTok, err := p.expect(tokNumber, "a number")
		if err != nil {
			return rawOperand{}, err
		}
		v, err := strconv.ParseInt(numTok.text, 10, 32)
		if err != nil {
			return rawOperand{}, &ParseError{Line: numTok.line, Message: "bad integer literal " + numTok.text}
		}
		return rawOperand{kind: rawImm, imm: isa.Word(v)}, nil
	case tokEquals:
		p.advance()
		nameTok, err := p.expect(tokIdent, "a data symbol")
		if err != nil {
			return rawOperand{}, err
		}
		return rawOperand{kind: rawDataRef, name: nameTok.text}, nil
	case tokLBracket:
		p.advance()
		regTok, err := p.expect(tokIdent, "a register")
		if err != nil {
			return rawOperand{}, err
		}
		reg, ok := lookupRegister(regTok.text)
		if !ok {
			return rawOperand{}, &ParseError{Line: regTok.line, Message: "not a register: " + regTok.text}
		}
		if _, err := p.expect(tokRBracket, "']'"); err != nil {
			return rawOperand{}, err
		}
		return rawOperand{kind: rawReg, reg: reg}, nil
	case tokIdent:
		if reg, ok := lookupRegister(t.text); ok {
			p.advance()
			return rawOperand{kind: rawReg, reg: reg}, nil
		}
		p.advance()
		return rawOperand{kind: rawCodeRef, name: t.text}, nil
	default:
		return rawOperand{}, &ParseError{Line: t.line, Message: "unexpected token '" + t.text + "' in operand"}
	}
}

func lookupMnemonic(text string) (isa.Opcode, bool) {
	up := strings.ToUpper(text)
	for op := isa.Opcode(0); op < isa.OpcodeCount; op++ {
		if isa.Mnemonic(op) == up {
			return op, true
		}
	}
	return 0, false
}

func lookupRegister(text string) (isa.RegID, bool) {
	low := strings.ToLower(text)
	switch low {
	case "lr":
		return isa.RegLR, true
	case "sp":
		return isa.RegSP, true
	case "cpsr":
		return isa.RegCPSR, true
	}
	if len(low) >= 2 && low[0] == 'r' {
		n, err := strconv.ParseUint(low[1:], 10, 8)
		if err == nil {
			return isa.RegID(n), true
		}
	}
	return 0, false
}

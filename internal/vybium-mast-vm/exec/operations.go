package exec

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/errsite"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/ops"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/opstack"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/rpo"
)

const u32Max = 1 << 32

func isU32(v field.Felt) bool {
	return v.Uint64() < u32Max
}

// collectOffendingU32 is only ever called once validation has already
// failed, so building the list of bad values never costs anything on the
// (overwhelmingly common) success path.
func collectOffendingU32(vals ...field.Felt) []field.Felt {
	bad := make([]field.Felt, 0, len(vals))
	for _, v := range vals {
		if !isU32(v) {
			bad = append(bad, v)
		}
	}
	return bad
}

func errU32Range(vals ...field.Felt) *errsite.OperationError {
	return errsite.NewNotU32ValuesError(0, collectOffendingU32(vals...)...)
}

// execOp executes a single BasicBlock instruction against the current
// context's stack and memory.
func (d *Driver) execOp(instr ops.Instr) *errsite.OperationError {
	s := d.current().stack
	m := d.current().memory

	pop := func() (field.Felt, *errsite.OperationError) {
		v, err := s.Pop()
		if err != nil {
			return field.Zero(), err.(*errsite.OperationError)
		}
		return v, nil
	}

	switch instr.Op {
	case ops.OpNoop:
		return nil

	case ops.OpPush:
		s.Push(d.clk, instr.Imm)
		return nil

	case ops.OpDrop:
		_, err := pop()
		return err

	case ops.OpDup0:
		s.Push(d.clk, s.Peek(0))
		return nil

	case ops.OpDup1:
		s.Push(d.clk, s.Peek(1))
		return nil

	case ops.OpSwap:
		a, b := s.Peek(0), s.Peek(1)
		s.Set(0, b)
		s.Set(1, a)
		return nil

	case ops.OpDupN:
		n := int(instr.Imm.Uint64())
		if n < 0 || n >= opstack.VisibleDepth {
			return errsite.NewOperationError(errsite.KindStackUnderflow, "dup.%d: index out of visible range", n)
		}
		s.Push(d.clk, s.Peek(n))
		return nil

	case ops.OpSwapW:
		n := int(instr.Imm.Uint64())
		if n < 1 || 4*n+3 >= opstack.VisibleDepth {
			return errsite.NewOperationError(errsite.KindStackUnderflow, "swapw.%d: index out of visible range", n)
		}
		for i := 0; i < 4; i++ {
			a, b := s.Peek(i), s.Peek(4*n+i)
			s.Set(i, b)
			s.Set(4*n+i, a)
		}
		return nil

	case ops.OpMovUp:
		n := int(instr.Imm.Uint64())
		if n < 1 || n >= opstack.VisibleDepth {
			return errsite.NewOperationError(errsite.KindStackUnderflow, "movup.%d: index out of visible range", n)
		}
		v := s.Peek(n)
		for i := n; i > 0; i-- {
			s.Set(i, s.Peek(i-1))
		}
		s.Set(0, v)
		return nil

	case ops.OpMovDn:
		n := int(instr.Imm.Uint64())
		if n < 1 || n >= opstack.VisibleDepth {
			return errsite.NewOperationError(errsite.KindStackUnderflow, "movdn.%d: index out of visible range", n)
		}
		v := s.Peek(0)
		for i := 0; i < n; i++ {
			s.Set(i, s.Peek(i+1))
		}
		s.Set(n, v)
		return nil

	case ops.OpReverseW:
		for i, j := 0, 3; i < j; i, j = i+1, j-1 {
			a, b := s.Peek(i), s.Peek(j)
			s.Set(i, b)
			s.Set(j, a)
		}
		return nil

	case ops.OpReverseDW:
		for i, j := 0, 7; i < j; i, j = i+1, j-1 {
			a, b := s.Peek(i), s.Peek(j)
			s.Set(i, b)
			s.Set(j, a)
		}
		return nil

	case ops.OpIncr:
		s.Set(0, s.Peek(0).Add(field.One()))
		return nil

	case ops.OpPadW:
		for i := 0; i < 4; i++ {
			s.Push(d.clk, field.Zero())
		}
		return nil

	case ops.OpDropW:
		for i := 0; i < 4; i++ {
			if _, err := pop(); err != nil {
				return err
			}
		}
		return nil

	case ops.OpAdd:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		s.Push(d.clk, a.Add(b))
		return nil

	case ops.OpSub:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		s.Push(d.clk, a.Sub(b))
		return nil

	case ops.OpMul:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		s.Push(d.clk, a.Mul(b))
		return nil

	case ops.OpDiv:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		if b.IsZero() {
			return errsite.NewOperationError(errsite.KindDivideByZero, "division by zero")
		}
		s.Push(d.clk, a.Div(b))
		return nil

	case ops.OpNeg:
		a, err := pop()
		if err != nil {
			return err
		}
		s.Push(d.clk, a.Neg())
		return nil

	case ops.OpInv:
		a, err := pop()
		if err != nil {
			return err
		}
		if a.IsZero() {
			return errsite.NewOperationError(errsite.KindDivideByZero, "inversion of zero")
		}
		s.Push(d.clk, a.Inv())
		return nil

	case ops.OpEq:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		if a == b {
			s.Push(d.clk, field.One())
		} else {
			s.Push(d.clk, field.Zero())
		}
		return nil

	case ops.OpEqz:
		a, err := pop()
		if err != nil {
			return err
		}
		if a.IsZero() {
			s.Push(d.clk, field.One())
		} else {
			s.Push(d.clk, field.Zero())
		}
		return nil

	case ops.OpNot:
		a, err := pop()
		if err != nil {
			return err
		}
		if a.IsZero() {
			s.Push(d.clk, field.One())
		} else {
			s.Push(d.clk, field.Zero())
		}
		return nil

	case ops.OpAnd:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		if !a.IsZero() && !b.IsZero() {
			s.Push(d.clk, field.One())
		} else {
			s.Push(d.clk, field.Zero())
		}
		return nil

	case ops.OpOr:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		if !a.IsZero() || !b.IsZero() {
			s.Push(d.clk, field.One())
		} else {
			s.Push(d.clk, field.Zero())
		}
		return nil

	case ops.OpExpacc:
		bit, err := pop()
		if err != nil {
			return err
		}
		base, err := pop()
		if err != nil {
			return err
		}
		acc, err := pop()
		if err != nil {
			return err
		}
		next := acc
		if !bit.IsZero() {
			next = acc.Mul(base)
		}
		s.Push(d.clk, base.Square())
		s.Push(d.clk, next)
		return nil

	case ops.OpU32Add:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		if !isU32(a) || !isU32(b) {
			return errU32Range(a, b)
		}
		s.Push(d.clk, a.Add(b))
		return nil

	case ops.OpU32Sub:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		if !isU32(a) || !isU32(b) {
			return errU32Range(a, b)
		}
		s.Push(d.clk, a.Sub(b))
		return nil

	case ops.OpU32Mul:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		if !isU32(a) || !isU32(b) {
			return errU32Range(a, b)
		}
		s.Push(d.clk, a.Mul(b))
		return nil

	case ops.OpU32Div:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		if !isU32(a) || !isU32(b) {
			return errU32Range(a, b)
		}
		if b.IsZero() {
			return errsite.NewOperationError(errsite.KindDivideByZero, "u32 division by zero")
		}
		s.Push(d.clk, field.New(a.Uint64()/b.Uint64()))
		return nil

	case ops.OpU32Split:
		a, err := pop()
		if err != nil {
			return err
		}
		v := a.Uint64()
		s.Push(d.clk, field.New(v>>32))
		s.Push(d.clk, field.New(v&0xFFFFFFFF))
		return nil

	case ops.OpU32Assert:
		a := s.Peek(0)
		if !isU32(a) {
			return errU32Range(a)
		}
		return nil

	case ops.OpU32Madd:
		c, err := pop()
		if err != nil {
			return err
		}
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		if !isU32(a) || !isU32(b) || !isU32(c) {
			return errU32Range(a, b, c)
		}
		v := a.Uint64()*b.Uint64() + c.Uint64()
		s.Push(d.clk, field.New(v>>32))
		s.Push(d.clk, field.New(v&0xFFFFFFFF))
		return nil

	case ops.OpU32And:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		if !isU32(a) || !isU32(b) {
			return errU32Range(a, b)
		}
		s.Push(d.clk, field.New(a.Uint64()&b.Uint64()))
		return nil

	case ops.OpU32Xor:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		if !isU32(a) || !isU32(b) {
			return errU32Range(a, b)
		}
		s.Push(d.clk, field.New(a.Uint64()^b.Uint64()))
		return nil

	case ops.OpU32Assert2:
		a, b := s.Peek(0), s.Peek(1)
		if !isU32(a) || !isU32(b) {
			return errU32Range(a, b)
		}
		return nil

	case ops.OpMemLoad:
		addr, err := pop()
		if err != nil {
			return err
		}
		v, merr := m.ReadElement(addr.Uint64())
		if merr != nil {
			return merr.(*errsite.OperationError)
		}
		s.Push(d.clk, v)
		return nil

	case ops.OpMemStore:
		addr, err := pop()
		if err != nil {
			return err
		}
		v, err := pop()
		if err != nil {
			return err
		}
		if merr := m.WriteElement(addr.Uint64(), v); merr != nil {
			return merr.(*errsite.OperationError)
		}
		return nil

	case ops.OpMemLoadW:
		addr, err := pop()
		if err != nil {
			return err
		}
		w, merr := m.ReadWord(addr.Uint64())
		if merr != nil {
			return merr.(*errsite.OperationError)
		}
		for i := 3; i >= 0; i-- {
			s.Push(d.clk, w[i])
		}
		return nil

	case ops.OpMemStoreW:
		addr, err := pop()
		if err != nil {
			return err
		}
		var w field.Word
		for i := 0; i < 4; i++ {
			v, err := pop()
			if err != nil {
				return err
			}
			w[i] = v
		}
		if merr := m.WriteWord(addr.Uint64(), w); merr != nil {
			return merr.(*errsite.OperationError)
		}
		return nil

	case ops.OpMemLoadWBE:
		addr, err := pop()
		if err != nil {
			return err
		}
		w, merr := m.ReadWord(addr.Uint64())
		if merr != nil {
			return merr.(*errsite.OperationError)
		}
		for i := 0; i < 4; i++ {
			s.Push(d.clk, w[i])
		}
		return nil

	case ops.OpMemStoreWBE:
		addr, err := pop()
		if err != nil {
			return err
		}
		var w field.Word
		for i := 3; i >= 0; i-- {
			v, err := pop()
			if err != nil {
				return err
			}
			w[i] = v
		}
		if merr := m.WriteWord(addr.Uint64(), w); merr != nil {
			return merr.(*errsite.OperationError)
		}
		return nil

	case ops.OpMStream:
		addr, err := pop()
		if err != nil {
			return err
		}
		a, b, merr := m.ReadDoubleWord(addr.Uint64())
		if merr != nil {
			return merr.(*errsite.OperationError)
		}
		for i := 3; i >= 0; i-- {
			s.Push(d.clk, b[i])
		}
		for i := 3; i >= 0; i-- {
			s.Push(d.clk, a[i])
		}
		s.Push(d.clk, addr.Add(field.New(8)))
		return nil

	case ops.OpHPerm:
		var state rpo.State
		for i := rpo.Width - 1; i >= 0; i-- {
			v, err := pop()
			if err != nil {
				return err
			}
			state[i] = v
		}
		rpo.Permute(&state)
		for i := rpo.Width - 1; i >= 0; i-- {
			s.Push(d.clk, state[i])
		}
		return nil

	case ops.OpMTreeGet:
		return d.execMTreeGet(s)

	case ops.OpMTreeSet:
		return d.execMTreeSet(s)

	case ops.OpMTreeMerge:
		return d.execMTreeMerge(s)

	case ops.OpMpVerify:
		return d.execMpVerify(s, instr.Imm.Uint64())

	case ops.OpFriE2F4:
		return d.execFriE2F4(s)

	case ops.OpHornerBase:
		return d.execHornerBase(s)

	case ops.OpHornerExt:
		return d.execHornerExt(s)

	case ops.OpAssert:
		v, err := pop()
		if err != nil {
			return err
		}
		if v != field.One() {
			return errsite.NewFailedAssertionError(instr.Imm.Uint64())
		}
		return nil

	case ops.OpAssertEq:
		b, err := pop()
		if err != nil {
			return err
		}
		a, err := pop()
		if err != nil {
			return err
		}
		if a != b {
			return errsite.NewOperationError(errsite.KindAssertionFailed, "assert_eq: %s != %s", a, b)
		}
		return nil

	case ops.OpHalt:
		return nil

	case ops.OpAdvPush:
		v, aerr := d.advice.PopStack()
		if aerr != nil {
			return aerr.(*errsite.OperationError)
		}
		s.Push(d.clk, v)
		return nil

	case ops.OpAdvPopW:
		w, aerr := d.advice.PopStackWord()
		if aerr != nil {
			return aerr.(*errsite.OperationError)
		}
		for i := 3; i >= 0; i-- {
			s.Push(d.clk, w[i])
		}
		return nil

	case ops.OpAdvInsertMapEntry:
		var key field.Word
		for i := 0; i < 4; i++ {
			v, err := pop()
			if err != nil {
				return err
			}
			key[i] = v
		}
		var w field.Word
		for i := 0; i < 4; i++ {
			v, err := pop()
			if err != nil {
				return err
			}
			w[i] = v
		}
		if aerr := d.advice.InsertMapEntry(key, w.Slice()); aerr != nil {
			return aerr.(*errsite.OperationError)
		}
		return nil

	case ops.OpSysEvent:
		return d.execSysEvent(instr.Imm, s)

	case ops.OpLogPrecompile:
		return d.execLogPrecompile(instr.Imm, s)

	default:
		return errsite.NewOperationError(errsite.KindStackUnderflow, "unknown operation %s", instr.Op)
	}
}

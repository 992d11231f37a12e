package exec

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/errsite"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/opstack"
)

func popWord(s *opstack.Stack) (field.Word, *errsite.OperationError) {
	var w field.Word
	for i := 0; i < 4; i++ {
		v, err := s.Pop()
		if err != nil {
			return field.Word{}, err.(*errsite.OperationError)
		}
		w[i] = v
	}
	return w, nil
}

func pushWord(s *opstack.Stack, clk uint64, w field.Word) {
	for i := 3; i >= 0; i-- {
		s.Push(clk, w[i])
	}
}

func (d *Driver) execMTreeGet(s *opstack.Stack) *errsite.OperationError {
	root, err := popWord(s)
	if err != nil {
		return err
	}
	depthFelt, perr := s.Pop()
	if perr != nil {
		return perr.(*errsite.OperationError)
	}
	indexFelt, perr := s.Pop()
	if perr != nil {
		return perr.(*errsite.OperationError)
	}
	leaf, _, merr := d.advice.Merkle.GetPath(root, indexFelt.Uint64(), uint8(depthFelt.Uint64()))
	if merr != nil {
		return merr.(*errsite.OperationError)
	}
	pushWord(s, d.clk, leaf)
	return nil
}

func (d *Driver) execMTreeSet(s *opstack.Stack) *errsite.OperationError {
	root, err := popWord(s)
	if err != nil {
		return err
	}
	depthFelt, perr := s.Pop()
	if perr != nil {
		return perr.(*errsite.OperationError)
	}
	indexFelt, perr := s.Pop()
	if perr != nil {
		return perr.(*errsite.OperationError)
	}
	newLeaf, err := popWord(s)
	if err != nil {
		return err
	}

	depth := uint8(depthFelt.Uint64())
	index := indexFelt.Uint64()

	_, siblings, merr := d.advice.Merkle.GetPath(root, index, depth)
	if merr != nil {
		return merr.(*errsite.OperationError)
	}
	newRoot, serr := d.advice.Merkle.SetPath(index, depth, newLeaf, siblings)
	if serr != nil {
		return serr.(*errsite.OperationError)
	}
	pushWord(s, d.clk, newRoot)
	return nil
}

func (d *Driver) execMTreeMerge(s *opstack.Stack) *errsite.OperationError {
	right, err := popWord(s)
	if err != nil {
		return err
	}
	left, err := popWord(s)
	if err != nil {
		return err
	}
	newRoot := d.advice.Merkle.InsertNode(left, right)
	pushWord(s, d.clk, newRoot)
	return nil
}

// execMpVerify is a non-destructive Merkle path check: it peeks the
// claimed value, depth, index, and root (leaving the stack untouched) and
// faults with MerklePathVerificationFailed if the advice provider's
// recorded path for (root, index, depth) does not resolve to value.
func (d *Driver) execMpVerify(s *opstack.Stack, errCode uint64) *errsite.OperationError {
	var value field.Word
	for i := 0; i < 4; i++ {
		value[i] = s.Peek(i)
	}
	depth := uint8(s.Peek(4).Uint64())
	index := s.Peek(5).Uint64()
	var root field.Word
	for i := 0; i < 4; i++ {
		root[i] = s.Peek(6 + i)
	}

	leaf, _, merr := d.advice.Merkle.GetPath(root, index, depth)
	if merr != nil {
		oerr := merr.(*errsite.OperationError)
		return errsite.NewMerklePathVerificationFailedError(value, index, root, errCode, oerr.Error())
	}
	if leaf != value {
		return errsite.NewMerklePathVerificationFailedError(value, index, root, errCode, "claimed leaf value does not match merkle path")
	}
	return nil
}

// execFriE2F4 performs one FRI folding step over the quadratic extension
// field: given a challenge alpha and the even/odd halves of one layer's
// evaluation at a point, it returns even + alpha*odd, the next layer's
// evaluation at the folded point.
func (d *Driver) execFriE2F4(s *opstack.Stack) *errsite.OperationError {
	alpha, err := popExt(s)
	if err != nil {
		return err
	}
	odd, err := popExt(s)
	if err != nil {
		return err
	}
	even, err := popExt(s)
	if err != nil {
		return err
	}
	folded := even.Add(alpha.Mul(odd))
	pushExt(s, d.clk, folded)
	return nil
}

// execHornerBase performs one step of Horner's method over the base
// field: acc' = acc*x + c.
func (d *Driver) execHornerBase(s *opstack.Stack) *errsite.OperationError {
	x, err := pop1(s)
	if err != nil {
		return err
	}
	acc, err := pop1(s)
	if err != nil {
		return err
	}
	c, err := pop1(s)
	if err != nil {
		return err
	}
	s.Push(d.clk, acc.Mul(x).Add(c))
	return nil
}

// execHornerExt is execHornerBase lifted to the quadratic extension
// field, used when evaluating a polynomial at an out-of-domain point.
func (d *Driver) execHornerExt(s *opstack.Stack) *errsite.OperationError {
	x, err := popExt(s)
	if err != nil {
		return err
	}
	acc, err := popExt(s)
	if err != nil {
		return err
	}
	c, err := popExt(s)
	if err != nil {
		return err
	}
	result := acc.Mul(x).Add(c)
	pushExt(s, d.clk, result)
	return nil
}

func pop1(s *opstack.Stack) (field.Felt, *errsite.OperationError) {
	v, err := s.Pop()
	if err != nil {
		return field.Zero(), err.(*errsite.OperationError)
	}
	return v, nil
}

func popExt(s *opstack.Stack) (field.Felt2, *errsite.OperationError) {
	a1, err := pop1(s)
	if err != nil {
		return field.Felt2{}, err
	}
	a0, err := pop1(s)
	if err != nil {
		return field.Felt2{}, err
	}
	return field.NewFelt2(a0, a1), nil
}

func pushExt(s *opstack.Stack, clk uint64, z field.Felt2) {
	s.Push(clk, z.A0)
	s.Push(clk, z.A1)
}

package exec

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/errsite"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/host"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/opstack"
)

func (d *Driver) execSysEvent(imm field.Felt, s *opstack.Stack) *errsite.OperationError {
	eventID := uint32(imm.Uint64())
	top := make([]field.Felt, 4)
	for i := 0; i < 4; i++ {
		top[i] = s.Peek(i)
	}

	mutations, herr := d.host.OnEvent(eventID, top)
	if herr != nil {
		return errsite.NewEventError(eventID, "host event %d failed: %v", eventID, herr)
	}
	for _, mut := range mutations {
		if err := d.applyMutation(mut); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) applyMutation(mut host.AdviceMutation) *errsite.OperationError {
	switch mut.Kind {
	case host.MutationPushStack:
		d.advice.PushStack(mut.PushValue)
		return nil
	case host.MutationInsertMapEntry:
		if err := d.advice.InsertMapEntry(mut.MapKey, mut.MapValues); err != nil {
			return err.(*errsite.OperationError)
		}
		return nil
	case host.MutationMerkleMerge:
		for i := range mut.MerkleParents {
			d.advice.Merkle.InsertNode(mut.MerkleLefts[i], mut.MerkleRights[i])
		}
		return nil
	case host.MutationPushStackWord:
		d.advice.PushStackWord(mut.PushWordValue)
		return nil
	case host.MutationExtendStack:
		for _, v := range mut.ExtendValues {
			d.advice.PushStack(v)
		}
		return nil
	case host.MutationMerkleUpdate:
		_, serr := d.advice.Merkle.SetPath(mut.MerkleUpdateIndex, mut.MerkleUpdateDepth, mut.MerkleUpdateNewLeaf, mut.MerkleUpdateSiblings)
		if serr != nil {
			return serr.(*errsite.OperationError)
		}
		return nil
	default:
		return errsite.NewOperationError(errsite.KindStackUnderflow, "unknown advice mutation kind %d", mut.Kind)
	}
}

func (d *Driver) execLogPrecompile(imm field.Felt, s *opstack.Stack) *errsite.OperationError {
	argsDigest, err := popWord(s)
	if err != nil {
		return err
	}
	resultCommitment, err := popWord(s)
	if err != nil {
		return err
	}

	commitment, herr := d.host.GetPrecompileCommitment(imm, argsDigest)
	if herr != nil {
		return errsite.NewOperationError(errsite.KindStackUnderflow, "precompile commitment failed: %v", herr)
	}
	if commitment != resultCommitment {
		return errsite.NewOperationError(errsite.KindAssertionFailed, "precompile commitment mismatch")
	}

	running := d.transcript.Log(imm, commitment)
	d.recordPrecompileRequest(imm, commitment)
	pushWord(s, d.clk, running)
	return nil
}

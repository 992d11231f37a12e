// Command vybium-mast-run reads a program/claim triple as JSON lines from
// stdin, executes it, and writes the resulting stack outputs and
// precompile commitment to stdout as a single JSON object.
package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	vybiummastvm "github.com/vybium/vybium-mast-vm/pkg/vybium-mast-vm"

	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/mast"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/ops"
)

// NodeInput is the wire format for one MAST node. Kind selects which of
// the other fields apply; Ops is only meaningful for "basic_block".
type NodeInput struct {
	Kind string      `json:"kind"`
	Ops  []InstrJSON `json:"ops,omitempty"`
	Left  int `json:"left,omitempty"`
	Right int `json:"right,omitempty"`
}

// InstrJSON is one operation plus its optional immediate, by name so
// claim files stay human-editable.
type InstrJSON struct {
	Op  string `json:"op"`
	Imm uint64 `json:"imm,omitempty"`
}

// ProgramInput describes a forest as a flat, already-topologically-sorted
// list of nodes (children before parents) plus the entry node's index.
// Kernel lists the indices of nodes to declare callable via sys_call.
type ProgramInput struct {
	Nodes  []NodeInput `json:"nodes"`
	Entry  int         `json:"entry"`
	Kernel []int       `json:"kernel,omitempty"`
}

// ClaimInput carries the run's public inputs and execution bound.
type ClaimInput struct {
	StackInputs []uint64 `json:"stack_inputs"`
	MaxCycles   uint64   `json:"max_cycles"`
}

// NonDeterminismInput carries the run's advice inputs.
type NonDeterminismInput struct {
	AdviceStack []uint64 `json:"advice_stack"`
}

// RunOutput is the JSON object written to stdout on success.
type RunOutput struct {
	StackOutputs          []uint64 `json:"stack_outputs"`
	PrecompileCommitment  string   `json:"precompile_commitment"`
	CycleCount            uint64   `json:"cycle_count"`
}

var opByName map[string]ops.Operation

func init() {
	opByName = make(map[string]ops.Operation, len(ops.Catalog))
	for o, info := range ops.Catalog {
		opByName[info.Name] = o
	}
}

func main() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	if !scanner.Scan() {
		fatal("failed to read claim")
	}
	var claim ClaimInput
	if err := json.Unmarshal(scanner.Bytes(), &claim); err != nil {
		fatal(fmt.Sprintf("failed to parse claim: %v", err))
	}

	if !scanner.Scan() {
		fatal("failed to read program")
	}
	var progInput ProgramInput
	if err := json.Unmarshal(scanner.Bytes(), &progInput); err != nil {
		fatal(fmt.Sprintf("failed to parse program: %v", err))
	}

	if !scanner.Scan() {
		fatal("failed to read non_determinism")
	}
	var nonDet NonDeterminismInput
	if err := json.Unmarshal(scanner.Bytes(), &nonDet); err != nil {
		fatal(fmt.Sprintf("failed to parse non_determinism: %v", err))
	}

	prog, err := convertProgram(progInput)
	if err != nil {
		fatal(fmt.Sprintf("failed to convert program: %v", err))
	}

	logStderr("executing program...")
	vm := vybiummastvm.New(vybiummastvm.DefaultExecutionOptions().WithMaxCycles(claim.MaxCycles))

	stackInValues, err := convertFieldElements(claim.StackInputs)
	if err != nil {
		fatal(fmt.Sprintf("failed to convert stack_inputs: %v", err))
	}
	adviceValues, err := convertFieldElements(nonDet.AdviceStack)
	if err != nil {
		fatal(fmt.Sprintf("failed to convert advice_stack: %v", err))
	}
	stackIn := vybiummastvm.StackInputs{Values: stackInValues}
	adviceIn := vybiummastvm.AdviceInputs{StackValues: adviceValues}

	result, err := vm.Execute(prog, stackIn, adviceIn, vybiummastvm.NopHost{})
	if err != nil {
		fatal(fmt.Sprintf("execution failed: %v", err))
	}
	logStderr(fmt.Sprintf("execution completed in %d cycles", result.CycleCount))

	out := RunOutput{
		StackOutputs:         feltsToUint64s(result.Stack.Values),
		PrecompileCommitment: hex.EncodeToString(wordBytes(result.PrecompileCommitment)),
		CycleCount:           result.CycleCount,
	}
	outBytes, err := json.Marshal(out)
	if err != nil {
		fatal(fmt.Sprintf("failed to serialize output: %v", err))
	}
	os.Stdout.Write(outBytes)
	os.Stdout.Write([]byte("\n"))
}

func convertProgram(input ProgramInput) (*vybiummastvm.Program, error) {
	prog := vybiummastvm.NewProgram()
	ids := make([]mast.NodeId, len(input.Nodes))

	for i, n := range input.Nodes {
		switch n.Kind {
		case "basic_block":
			instrs := make([]ops.Instr, len(n.Ops))
			for j, in := range n.Ops {
				o, ok := opByName[in.Op]
				if !ok {
					return nil, fmt.Errorf("node %d: unknown operation %q", i, in.Op)
				}
				imm, ferr := field.NewChecked(in.Imm)
				if ferr != nil {
					return nil, fmt.Errorf("node %d, op %q: %w", i, in.Op, ferr)
				}
				instrs[j] = ops.Instr{Op: o, Imm: imm}
			}
			ids[i] = prog.Forest.AddBasicBlock(instrs)
		case "join":
			ids[i] = prog.Forest.AddJoin(ids[n.Left], ids[n.Right])
		case "split":
			ids[i] = prog.Forest.AddSplit(ids[n.Left], ids[n.Right])
		case "loop":
			ids[i] = prog.Forest.AddLoop(ids[n.Left])
		case "call":
			ids[i] = prog.Forest.AddCall(ids[n.Left])
		case "syscall":
			ids[i] = prog.Forest.AddSysCall(ids[n.Left])
		default:
			return nil, fmt.Errorf("node %d: unknown kind %q", i, n.Kind)
		}
	}

	if input.Entry < 0 || input.Entry >= len(ids) {
		return nil, fmt.Errorf("entry index %d out of range", input.Entry)
	}
	prog.EntryRoot = ids[input.Entry]

	for _, idx := range input.Kernel {
		if idx < 0 || idx >= len(ids) {
			return nil, fmt.Errorf("kernel index %d out of range", idx)
		}
		prog.DeclareKernelProcedure(ids[idx])
	}

	return prog, nil
}

func convertFieldElements(values []uint64) ([]field.Felt, error) {
	out := make([]field.Felt, len(values))
	for i, v := range values {
		felt, err := field.NewChecked(v)
		if err != nil {
			return nil, fmt.Errorf("value %d at index %d: %w", v, i, err)
		}
		out[i] = felt
	}
	return out, nil
}

func feltsToUint64s(values []field.Felt) []uint64 {
	out := make([]uint64, len(values))
	for i, v := range values {
		out[i] = v.Uint64()
	}
	return out
}

func wordBytes(w field.Word) []byte {
	b := w.Bytes()
	return b[:]
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "vybium-mast-run:", msg)
}

func fatal(msg string) {
	logStderr("error: " + msg)
	os.Exit(1)
}

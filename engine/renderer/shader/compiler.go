package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/gogpu/naga"
)

// EntryPoint is the entry point name of precompiled bytecode. WGSL is compiled for the entry point it
// declares for the requested stage.
const EntryPoint = "main"

// CompileRequest is the input of a Compiler.
type CompileRequest struct {
	// Name identifies the shader in diagnostics, usually its ID or path.
	Name       string
	Source     string
	Stage      common.ShaderStage
	EntryPoint string
	Debug      bool
}

// Compiler turns shader source text into bytecode the device accepts.
type Compiler interface {
	// Compile compiles a single shader stage.
	//
	// Parameters:
	//   - req: the source, stage and entry point to compile
	//
	// Returns:
	//   - []byte: the compiled bytecode
	//   - error: the compiler diagnostic when compilation fails
	Compile(req CompileRequest) ([]byte, error)
}

// CompilerFunc adapts a plain function to the Compiler interface.
type CompilerFunc func(req CompileRequest) ([]byte, error)

func (f CompilerFunc) Compile(req CompileRequest) ([]byte, error) {
	return f(req)
}

// NagaCompiler compiles WGSL to SPIR-V with the pure Go naga compiler.
type NagaCompiler struct{}

var _ Compiler = NagaCompiler{}

func (NagaCompiler) Compile(req CompileRequest) ([]byte, error) {
	spirv, err := naga.Compile(req.Source)
	if err != nil {
		return nil, fmt.Errorf("naga: %w", err)
	}
	if req.Debug {
		common.Logger().Debug("shader compiled", "name", req.Name, "stage", req.Stage.String(), "bytes", len(spirv))
	}
	return spirv, nil
}

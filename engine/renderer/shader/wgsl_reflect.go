package shader

import (
	"regexp"
	"strings"

	"github.com/Carmen-Shannon/oxy-gpu/common"
)

var (
	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(1) @binding(0) var<uniform> transform: Transform;
	// or handle types: @group(2) @binding(1) var diffuseSampler: sampler;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// reflection is what the shader cache needs to know about a WGSL module before compiling it.
type reflection struct {
	vertexEntry   string
	fragmentEntry string
	uniforms      uint32
	samplers      uint32
}

// entryPoint returns the entry point declared for a stage, or an empty string.
func (r reflection) entryPoint(stage common.ShaderStage) string {
	if stage == common.ShaderStageFragment {
		return r.fragmentEntry
	}
	return r.vertexEntry
}

// reflectWGSL scans WGSL source for stage entry points and resource declarations.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - reflection: the entry points and the uniform buffer and sampler counts of the module
func reflectWGSL(source string) reflection {
	cleaned := stripComments(source)

	var r reflection
	if match := vertexEntryRegex.FindStringSubmatch(cleaned); match != nil {
		r.vertexEntry = match[1]
	}
	if match := fragmentEntryRegex.FindStringSubmatch(cleaned); match != nil {
		r.fragmentEntry = match[1]
	}

	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		addressSpace := strings.TrimSpace(match[3])
		typeName := strings.TrimSpace(match[5])

		switch {
		case strings.HasPrefix(addressSpace, "uniform"):
			r.uniforms++
		case typeName == "sampler" || typeName == "sampler_comparison":
			r.samplers++
		}
	}
	return r
}

// stripComments removes line and block comments from WGSL source.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

// stripLineComments removes single-line // comments from WGSL source so they
// do not interfere with entry point and binding parsing
func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// stripBlockComments removes block comments, which nest in WGSL.
func stripBlockComments(source string) string {
	var sb strings.Builder
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) && source[i] == '/' && source[i+1] == '*' {
			depth++
			i++
			continue
		}
		if depth > 0 && i+1 < len(source) && source[i] == '*' && source[i+1] == '/' {
			depth--
			i++
			continue
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

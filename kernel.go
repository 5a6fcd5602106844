package turbo

import "strings"

// kernelPrelude declares the two primitives available to every kernel
// body. read() returns the current element's four channels sampled from
// the input texture; commit(v) sets the element's output. The fragment
// entry point clears the output, runs the body, and returns whatever was
// committed. Bodies that never commit produce the cleared value, which
// callers must treat as unspecified.
//
// The sampler bound at binding 1 is created by the engine with nearest
// filtering and clamp-to-edge addressing, so each texel maps to exactly
// one element with no interpolation. textureSampleLevel keeps the sample
// legal from non-entry functions.
const kernelPrelude = `@group(0) @binding(0) var cell_tex: texture_2d<f32>;
@group(0) @binding(1) var cell_smp: sampler;

var<private> cell_uv: vec2<f32>;
var<private> cell_val: vec4<f32>;

fn read() -> vec4<f32> {
    return textureSampleLevel(cell_tex, cell_smp, cell_uv, 0.0);
}

fn commit(value: vec4<f32>) {
    cell_val = value;
}

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    cell_uv = uv;
    cell_val = vec4<f32>(0.0);
    run_kernel();
    return cell_val;
}

fn run_kernel() {
`

// kernelEpilogue closes the body's enclosing function.
const kernelEpilogue = "\n}\n"

// AssembleKernel wraps a caller-supplied kernel body in the fixed prelude
// and returns the complete fragment-stage source the engine compiles.
// The body is inserted verbatim; no structural validation happens here.
// Malformed bodies surface as CompileError when Run compiles the result.
//
// AssembleKernel is exported for kernel debugging: the returned text is
// exactly what the shader front end sees.
func AssembleKernel(body string) string {
	return kernelPrelude + body + kernelEpilogue
}

// PreludeLineCount reports how many source lines precede the first line
// of the caller's body in an assembled kernel. Engines subtract it from
// front-end diagnostic positions so errors use the caller's numbering.
func PreludeLineCount() int {
	return strings.Count(kernelPrelude, "\n")
}

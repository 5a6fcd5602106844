package turbo

import (
	"strings"
	"testing"
)

func TestAssembleKernelLayout(t *testing.T) {
	body := "let v = read();\ncommit(v * 2.0);"
	src := AssembleKernel(body)

	if !strings.HasPrefix(src, kernelPrelude) {
		t.Error("assembled source does not start with the prelude")
	}
	if !strings.HasSuffix(src, kernelEpilogue) {
		t.Error("assembled source does not end with the closing brace")
	}
	if !strings.Contains(src, body) {
		t.Error("assembled source does not contain the body verbatim")
	}
}

func TestAssembleKernelBodyPosition(t *testing.T) {
	body := "first_line();\nsecond_line();"
	src := AssembleKernel(body)
	lines := strings.Split(src, "\n")

	// Body line 1 sits immediately after the prelude lines, so a
	// diagnostic at assembled line PreludeLineCount()+1 maps to the
	// caller's line 1.
	if got := lines[PreludeLineCount()]; got != "first_line();" {
		t.Errorf("line %d = %q, want first body line", PreludeLineCount()+1, got)
	}
	if got := lines[PreludeLineCount()+1]; got != "second_line();" {
		t.Errorf("line %d = %q, want second body line", PreludeLineCount()+2, got)
	}
}

func TestPreludeDeclaresPrimitives(t *testing.T) {
	for _, want := range []string{
		"fn read() -> vec4<f32>",
		"fn commit(value: vec4<f32>)",
		"@fragment",
		"textureSampleLevel",
	} {
		if !strings.Contains(kernelPrelude, want) {
			t.Errorf("prelude is missing %q", want)
		}
	}
}

func TestPreludeLineCount(t *testing.T) {
	if got, want := PreludeLineCount(), strings.Count(kernelPrelude, "\n"); got != want {
		t.Errorf("PreludeLineCount() = %d, want %d", got, want)
	}
	if PreludeLineCount() == 0 {
		t.Error("PreludeLineCount() = 0, prelude must occupy leading lines")
	}
}

func TestAssembleKernelEmptyBody(t *testing.T) {
	src := AssembleKernel("")
	if !strings.Contains(src, "fn run_kernel() {\n\n}") {
		t.Errorf("empty body should produce an empty kernel function, got:\n%s", src)
	}
}

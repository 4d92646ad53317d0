package render

import (
	"embed"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

//go:embed shaders/*.kage
var shaderFS embed.FS

// UniformTime is set to the seconds since the backend started on every map
// shader that is presented.
const UniformTime = "Time"

// Shader is a Kage program with its pending uniform values. It compiles on
// first use.
type Shader struct {
	name string
	src  []byte

	mu       sync.Mutex
	uniforms map[string]any
	compiled *ebiten.Shader
	err      error
}

// NewShader wraps Kage source. Compile errors surface when the shader is
// first presented, or through Compile.
func NewShader(name string, src []byte) *Shader {
	return &Shader{name: name, src: src, uniforms: make(map[string]any)}
}

func (s *Shader) Name() string { return s.name }

// SetUniform stores v for the next draw. A single value is a float uniform,
// more values form a vector.
func (s *Shader) SetUniform(name string, v ...float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(v) == 1 {
		s.uniforms[name] = v[0]
		return
	}
	s.uniforms[name] = slices.Clone(v)
}

// Uniform returns the stored value of a uniform.
func (s *Shader) Uniform(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.uniforms[name]
	return v, ok
}

func (s *Shader) uniformSnapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.uniforms))
	for k, v := range s.uniforms {
		out[k] = v
	}
	return out
}

// Compile builds the program. It is safe to call repeatedly.
func (s *Shader) Compile() (*ebiten.Shader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.compiled == nil && s.err == nil {
		s.compiled, s.err = ebiten.NewShader(s.src)
		if s.err != nil {
			s.err = fmt.Errorf("compile shader %q: %w", s.name, s.err)
		}
	}
	return s.compiled, s.err
}

// BuiltinShaders returns the embedded map shaders keyed by name.
func BuiltinShaders() (map[string]*Shader, error) {
	entries, err := shaderFS.ReadDir("shaders")
	if err != nil {
		return nil, fmt.Errorf("read embedded shaders: %w", err)
	}
	out := make(map[string]*Shader, len(entries))
	for _, e := range entries {
		src, err := shaderFS.ReadFile(path.Join("shaders", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read shader %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		out[name] = NewShader(name, src)
	}
	return out, nil
}

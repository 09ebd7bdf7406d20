package codegen

import (
	"bytes"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/wippyai/itf/errors"
)

// Options configures code generation.
type Options struct {
	// Dir is the directory of the package to generate for.
	Dir string
	// Output is the generated file name, relative to Dir.
	Output string
	// Tags are build tags used when loading the package.
	Tags []string
}

// DefaultOptions returns the options used by itfgen without flags.
func DefaultOptions() Options {
	return Options{
		Dir:    ".",
		Output: "itf_gen.go",
	}
}

// Generate renders the decoders of p as gofmt'd Go source.
func (p *Package) Generate() ([]byte, error) {
	if len(p.Decls) == 0 {
		return nil, errors.Unsupported(errors.PhaseCodegen, "no //itf: directives in "+p.Path)
	}
	f, err := p.file()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, errors.Wrap(errors.PhaseCodegen, errors.KindUnsupported, err, "render "+p.Path)
	}
	return buf.Bytes(), nil
}

// Run loads the package in opts.Dir, generates its decoders and writes
// them to opts.Output. It returns the path of the written file.
func Run(opts Options) (string, error) {
	if opts.Output == "" {
		opts.Output = DefaultOptions().Output
	}
	pkg, err := Load(opts)
	if err != nil {
		return "", err
	}
	src, err := pkg.Generate()
	if err != nil {
		return "", err
	}

	out := filepath.Join(pkg.Dir, opts.Output)
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return "", errors.Wrap(errors.PhaseCodegen, errors.KindUnsupported, err, "write "+out)
	}
	Logger().Info("wrote decoders",
		zap.String("file", out),
		zap.Int("decls", len(pkg.Decls)))
	return out, nil
}

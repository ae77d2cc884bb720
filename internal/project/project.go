// Package project is the collaborator surface the compilers consume: an
// output-directory accessor and a best-effort Verilog formatter hook. The
// full project walker and metadata store live outside this repository.
package project

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
)

// Formatter names the external netlist formatter probed on PATH.
const Formatter = "verible-verilog-format"

// Project supplies the output directory for generated artifacts.
type Project struct {
	outDir    string
	formatter string // resolved path, empty when not installed
}

// New creates the output directory if needed and resolves the optional
// external formatter.
func New(outDir string) (*Project, error) {
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}
	p := &Project{outDir: outDir}
	if path, err := exec.LookPath(Formatter); err == nil {
		p.formatter = path
	}
	return p, nil
}

// OutputPath returns the project output directory.
func (p *Project) OutputPath() string { return p.outDir }

// File returns a path inside the output directory.
func (p *Project) File(name string) string { return filepath.Join(p.outDir, name) }

// FormatVerilogFile runs the external formatter on path when one is
// installed. Failures are silent; formatting never blocks generation.
func (p *Project) FormatVerilogFile(path string) {
	if p == nil || p.formatter == "" {
		return
	}
	cmd := exec.Command(p.formatter, "--inplace", path)
	_ = cmd.Run()
}

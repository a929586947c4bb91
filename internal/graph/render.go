package graph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/emicklei/dot"

	"github.com/KostasZigo/commitgraph/internal/constants"
)

var (
	ErrGraphvizNotFound = errors.New("graphviz executable not found")
	ErrRenderFailed     = errors.New("graph rendering failed")
)

// Renderer writes a graph to outputPath and returns the file it produced.
type Renderer interface {
	Render(ctx context.Context, g *Graph, outputPath string) (string, error)
}

// NewRenderer picks the renderer for format. The dot format is written
// directly; every other format goes through graphviz found in graphvizPath or PATH.
func NewRenderer(format, graphvizPath string) Renderer {
	if format == "" {
		format = constants.DefaultFormat
	}
	if strings.EqualFold(format, constants.DOTFormat) {
		return &DOTFileRenderer{}
	}
	return &GraphvizRenderer{BinDir: graphvizPath, Format: strings.ToLower(format)}
}

// EncodeDOT returns the graphviz source of g.
func EncodeDOT(g *Graph) string {
	out := dot.NewGraph(dot.Directed)
	out.Attr("rankdir", "TB")

	nodes := make(map[string]dot.Node, len(g.Nodes))
	for _, node := range g.Nodes {
		nodes[node.Hash] = out.Node(node.Hash).Label(node.Label).Attr("shape", "box")
	}
	for _, edge := range g.Edges {
		out.Edge(nodes[edge.From], nodes[edge.To])
	}

	return out.String()
}

// DOTFileRenderer writes the graph source as <output>.dot.
type DOTFileRenderer struct{}

func (r *DOTFileRenderer) Render(_ context.Context, g *Graph, outputPath string) (string, error) {
	target := withExtension(outputPath, constants.DOTFormat)
	if err := os.WriteFile(target, []byte(EncodeDOT(g)), constants.FilePerms); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	return target, nil
}

// GraphvizRenderer pipes the graph source through the graphviz dot executable.
type GraphvizRenderer struct {
	BinDir string // directory holding the executable; PATH is searched when empty or missing
	Format string
}

func (r *GraphvizRenderer) Render(ctx context.Context, g *Graph, outputPath string) (string, error) {
	bin, err := r.executable()
	if err != nil {
		return "", err
	}

	format := r.Format
	if format == "" {
		format = constants.DefaultFormat
	}
	target := withExtension(outputPath, format)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-T"+format, "-o", target)
	cmd.Stdin = strings.NewReader(EncodeDOT(g))
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s: %v: %s", ErrRenderFailed, bin, err, strings.TrimSpace(stderr.String()))
	}
	return target, nil
}

func (r *GraphvizRenderer) executable() (string, error) {
	name := constants.GraphvizBinary
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	if r.BinDir != "" {
		candidate := filepath.Join(r.BinDir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s (graphviz path %q)", ErrGraphvizNotFound, name, r.BinDir)
	}
	return path, nil
}

// withExtension appends ".<format>" unless path already ends with it.
func withExtension(path, format string) string {
	if strings.EqualFold(filepath.Ext(path), "."+format) {
		return path
	}
	return path + "." + format
}

package kdtree

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteInfo writes a one-paragraph summary of the tree to w.
func (t *Tree) WriteInfo(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"kdtree: state %s, %d vectors of dimension %d\n"+
			"  decomposition %s, pivot %s, sort %t\n"+
			"  height %d (max %d, given %d), %d nodes, %d inner\n"+
			"  %d nonzero weights, built with sigma %t\n",
		t.state, t.ds.ndata, t.ds.ndim,
		t.dmode, t.mmode, t.sort,
		t.height, t.maxheight, t.givenheight, t.nnodes, t.ninner,
		len(t.ds.nz), t.builtWithSigma)
	return err
}

// WriteRaw writes the data matrix in its original row order.
func (t *Tree) WriteRaw(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < t.ds.ndata; i++ {
		fmt.Fprintf(bw, "%4d: %s\n", i, formatVector(t.ds.row(i)))
	}
	return bw.Flush()
}

// WriteData writes the info summary followed by every node in id order.
// verbosity 1 prints node ranges, split dimensions and pivots; 2 also
// prints the vectors in each terminal node.
func (t *Tree) WriteData(w io.Writer, verbosity int) error {
	if err := t.WriteInfo(w); err != nil {
		return err
	}
	if t.state != stateBuilt || verbosity < 1 {
		return nil
	}
	bw := bufio.NewWriter(w)
	for id := 1; id < t.nnodes; id++ {
		n := t.nodes.s[id]
		level := 0
		for v := id; v > 1; v /= 2 {
			level++
		}
		indent := strings.Repeat("  ", level)
		kind := "leaf"
		if !t.IsLeaf(id) {
			kind = "inner"
		}
		fmt.Fprintf(bw, "%snode %d (%s) [%d, %d) size %d", indent, id, kind, n.Start, n.End, n.Size)
		switch {
		case n.SplitDim >= 0:
			fmt.Fprintf(bw, " split dim %d at %g norm %g", n.SplitDim, t.Mean(id)[n.SplitDim], n.SplitNorm)
		case n.SplitDim == splitPlane:
			fmt.Fprintf(bw, " split plane %s norm %g", formatVector(t.Plane(id)), n.SplitNorm)
		}
		fmt.Fprintln(bw)
		if verbosity >= 2 && t.IsLeaf(id) {
			for i := n.Start; i < n.End; i++ {
				fmt.Fprintf(bw, "%s  %4d: %s\n", indent, t.ds.index.s[i], formatVector(t.ds.vector(i)))
			}
		}
	}
	return bw.Flush()
}

func formatVector(v []float32) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for j, x := range v {
		if j > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%g", x)
	}
	sb.WriteByte(')')
	return sb.String()
}

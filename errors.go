package skani

import "errors"

// ErrEmptyInput is returned when a reference or query set is empty; the CLI
// translates this into exit code 1 per §6.
var ErrEmptyInput = errors.New("skani: no reference sketches/genomes or query sketches/genomes found")

// ErrIncompatibleSketchParams is returned when loaded query sketch
// parameters differ from loaded reference sketch parameters in Dist mode.
// It is a fatal configuration conflict (§7.1): the caller aborts the run.
var ErrIncompatibleSketchParams = errors.New("skani: query sketch parameters were not equal to reference sketch parameters")

package unsupervised

import (
	"errors"
	"fmt"
)

// Sentinel errors. Branch on them with errors.Is.
var (
	// ErrInvalidArgument is returned for empty or ragged input, non-finite
	// values, and k or target dimensions outside their valid range.
	ErrInvalidArgument = errors.New("unsupervised: invalid argument")

	// ErrDegenerateCluster is returned when a cluster loses every point during
	// Lloyd refinement, which would make its mean undefined.
	ErrDegenerateCluster = errors.New("unsupervised: degenerate cluster")

	// ErrSingularCovariance tags mixture components whose covariance
	// determinant falls below the degeneracy threshold. It is never returned
	// from FitMixture; the component is skipped for that iteration and the
	// event is logged.
	ErrSingularCovariance = errors.New("unsupervised: singular covariance")

	// ErrNonConvergence is returned alongside a usable result when an
	// iterative routine hits its iteration cap before meeting its tolerance.
	ErrNonConvergence = errors.New("unsupervised: did not converge")
)

// DegenerateClusterError reports which cluster emptied out and when.
type DegenerateClusterError struct {
	Cluster   int
	Iteration int
}

func (e *DegenerateClusterError) Error() string {
	return fmt.Sprintf("unsupervised: cluster %d received no points at iteration %d", e.Cluster, e.Iteration)
}

func (e *DegenerateClusterError) Unwrap() error { return ErrDegenerateCluster }

// NonConvergenceError records the routine and iteration count at which an
// iteration cap was reached.
type NonConvergenceError struct {
	Routine    string
	Iterations int
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("unsupervised: %s did not converge within %d iterations", e.Routine, e.Iterations)
}

func (e *NonConvergenceError) Unwrap() error { return ErrNonConvergence }

// invalidArgf wraps ErrInvalidArgument with a formatted description.
func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}

package sweep

import "fmt"

// Levels returns the power levels of a sweep: the arithmetic progression
// from min to max inclusive in increments of step, in increasing order.
func Levels(min, max, step int) ([]int, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %d", step)
	}
	if min > max {
		return nil, fmt.Errorf("min power %d exceeds max power %d", min, max)
	}

	levels := make([]int, 0, (max-min)/step+1)
	for level := min; level <= max; level += step {
		levels = append(levels, level)
	}
	return levels, nil
}

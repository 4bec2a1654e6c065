package capacitor

import "github.com/tsugumi-sys/minecraft-addons/internal/world"

// SplitStacks делит количество на стопки не больше stackSize: 130 → [64 64 2].
// stackSize <= 0 - world.StackLimit.
func SplitStacks(total, stackSize int) []int {
	if total <= 0 {
		return nil
	}
	if stackSize <= 0 {
		stackSize = world.StackLimit
	}
	out := make([]int, 0, (total+stackSize-1)/stackSize)
	for total > 0 {
		n := min(total, stackSize)
		out = append(out, n)
		total -= n
	}
	return out
}

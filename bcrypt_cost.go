//go:build !race

package clinic

func passwordHashCost() int {
	return 10
}

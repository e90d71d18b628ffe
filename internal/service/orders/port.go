package orders

// FreePort returns the lowest even port in [minPort, maxPort] that is not in
// taken. Game servers claim port and port+1 (game + query), so only every
// second port is assignable.
func FreePort(taken []int, minPort, maxPort int) (int, error) {
	used := make(map[int]struct{}, len(taken))
	for _, p := range taken {
		used[p] = struct{}{}
	}

	start := minPort
	if start%2 != 0 {
		start++
	}
	for port := start; port <= maxPort; port += 2 {
		if _, ok := used[port]; !ok {
			return port, nil
		}
	}
	return 0, ErrNoFreePort
}

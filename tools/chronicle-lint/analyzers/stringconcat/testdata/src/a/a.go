package a

func bad(names []string) string {
	var out string
	for _, name := range names {
		out += name // want "string \\+= in a loop grows quadratically"
	}
	return out
}

func badWithSeparator(names []string) string {
	var out string
	for _, name := range names {
		out += name + ", " // want "string \\+= in a loop grows quadratically"
	}
	return out
}

func good(names []string) int {
	// Integer accumulation is fine.
	var total int
	for range names {
		total += 1
	}
	return total
}

func goodForLoop() int {
	sum := 0
	for i := 0; i < 10; i++ {
		sum += i
	}
	return sum
}

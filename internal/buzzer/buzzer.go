// Package buzzer implements the claim queue for a single prompt: a FIFO of
// player ids, first claimant answering, later claimants kept as fallback.
package buzzer

// Claim appends playerID to the queue unless it is already present.
// Duplicate claims are a no-op, not an error.
func Claim(queue []string, playerID string) []string {
	for _, id := range queue {
		if id == playerID {
			return queue
		}
	}
	return append(queue, playerID)
}

// HeadIsAnswering reports whether somebody currently holds the buzzer.
func HeadIsAnswering(queue []string) bool {
	return len(queue) > 0
}

// Head returns the player entitled to answer, or "" for an empty queue.
func Head(queue []string) string {
	if len(queue) == 0 {
		return ""
	}
	return queue[0]
}

// Advance drops the head, handing the buzzer to the next claimant.
func Advance(queue []string) []string {
	if len(queue) == 0 {
		return queue
	}
	return queue[1:]
}

// Position returns playerID's 1-based position in the queue, or 0 if absent.
func Position(queue []string, playerID string) int {
	for i, id := range queue {
		if id == playerID {
			return i + 1
		}
	}
	return 0
}

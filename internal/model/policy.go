package model

// ProgressRate computes the stored progress percentage: integer floor
// of done*100/total, and 0 for a project with no subtasks.
func ProgressRate(done, total int) int {
	if total <= 0 {
		return 0
	}
	return done * 100 / total
}

// NextStatus applies the subtask-driven part of the lifecycle state
// machine. DONE is terminal here; only completion can reach it and
// nothing reverts it.
func NextStatus(cur ProjectStatus, done, total int) ProjectStatus {
	if cur == StatusDone {
		return StatusDone
	}
	allDone := total > 0 && done == total
	switch {
	case allDone && cur == StatusInProgress:
		return StatusAlmostDone
	case !allDone && cur == StatusAlmostDone:
		return StatusInProgress
	default:
		return cur
	}
}

// RewardCoin computes the coin payout for a completed project.
//
// The per-hour base score shrinks for longer projects (10 up to 12h,
// 9 up to 24h, 8 beyond), and the level factor (40/50/60) scales it.
// The result truncates toward zero. Negative expected time is a
// precondition violation upstream and is not defended against.
func RewardCoin(expectedMinutes, levelFactor int) int {
	baseScore := 10
	if expectedMinutes > 1440 {
		baseScore = 8
	} else if expectedMinutes > 720 {
		baseScore = 9
	}

	expectedHours := float64(expectedMinutes) / 60.0
	levelRatio := float64(levelFactor) / 100.0
	return int(float64(baseScore) * levelRatio * expectedHours)
}

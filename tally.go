package trialrun

// Tally is the running aggregate of a run: trials executed so far and how
// many of them succeeded. Both counts only ever grow.
type Tally struct {
	trials    int64
	successes int64
}

// Add folds one trial outcome into the tally.
func (t *Tally) Add(success bool) {
	t.trials++
	if success {
		t.successes++
	}
}

// Merge folds a partial tally into t.
func (t *Tally) Merge(other Tally) {
	t.trials += other.trials
	t.successes += other.successes
}

func (t Tally) Trials() int64    { return t.trials }
func (t Tally) Successes() int64 { return t.successes }

// Probability returns successes/trials, or 0 before the first trial.
func (t Tally) Probability() float64 {
	if t.trials == 0 {
		return 0
	}
	return float64(t.successes) / float64(t.trials)
}

package shader

import "time"

// timerSampleCount is the sliding window over which Avg and Peak are
// computed.
const timerSampleCount = 64

// Timing reports the CPU-side dispatch cost of one cached shader over
// a sliding window of executions.
//
// This measures command submission, not GPU execution: the device API
// never blocks on the GPU, so the GPU-side cost of a pass is not
// observable here. Submission time still exposes the expensive cases
// (recompiles, driver sync stalls) that a render loop needs to notice.
type Timing struct {
	// Last is the duration of the most recent dispatch.
	Last time.Duration

	// Avg is the mean over the window.
	Avg time.Duration

	// Peak is the maximum over the window.
	Peak time.Duration

	// Count is the number of samples in the window.
	Count int
}

// timer is a fixed-size sample ring per cache entry.
type timer struct {
	samples [timerSampleCount]time.Duration
	next    int
	count   int
	sum     time.Duration
}

func (t *timer) record(d time.Duration) {
	if t.count == len(t.samples) {
		t.sum -= t.samples[t.next]
	} else {
		t.count++
	}
	t.samples[t.next] = d
	t.sum += d
	t.next = (t.next + 1) % len(t.samples)
}

func (t *timer) stats() Timing {
	if t.count == 0 {
		return Timing{}
	}
	res := Timing{
		Last:  t.samples[(t.next-1+len(t.samples))%len(t.samples)],
		Avg:   t.sum / time.Duration(t.count),
		Count: t.count,
	}
	for i := 0; i < t.count; i++ {
		if s := t.samples[i]; s > res.Peak {
			res.Peak = s
		}
	}
	return res
}

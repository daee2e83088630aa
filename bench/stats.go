package main

import (
	"context"
	"fmt"
	"math"
	"time"
)

type executionStats struct {
	min        time.Duration
	max        time.Duration
	avg        time.Duration
	cdur       time.Duration
	ops        int
	numSamples int
	numErrors  int
	numTimes   int
}

func (s executionStats) String() string {
	return fmt.Sprintf("min: %13v | max: %13v | avg: %13v | avg.ops: %4v | samples: %5v | errors: %4v | total: %5v",
		s.min, s.max, s.avg, s.ops, s.numSamples, s.numErrors, s.numTimes)
}

func executeTestInWorker(ctx context.Context, env *benchEnv, test testHandler, first int, numTimes int) (executionStats, []time.Duration) {

	var minDur time.Duration = math.MaxInt64
	var maxDur time.Duration
	var sumDur time.Duration

	numErrors := 0
	samples := make([]time.Duration, 0, numTimes)

	for i := first; i < first+numTimes; i++ {

		duration, err := test(ctx, env, i)

		if err == nil {
			sumDur += duration
			minDur = min(minDur, duration)
			maxDur = max(maxDur, duration)
			samples = append(samples, duration)
		} else {
			numErrors++
		}
	}

	stats := executionStats{
		cdur:       sumDur,
		numSamples: len(samples),
		numErrors:  numErrors,
		numTimes:   numTimes,
	}

	if len(samples) > 0 {
		stats.min = minDur
		stats.max = maxDur
		stats.avg = sumDur / time.Duration(len(samples))
	}
	if sumDur > 0 {
		stats.ops = int(float64(len(samples)) / sumDur.Seconds())
	}

	return stats, samples
}

func computeGlobalStats(statsSlice []executionStats, globalDuration time.Duration) executionStats {

	var minDur time.Duration = math.MaxInt64
	var global executionStats

	for _, stats := range statsSlice {
		if stats.numSamples > 0 {
			minDur = min(minDur, stats.min)
			global.max = max(global.max, stats.max)
		}
		global.cdur += stats.cdur
		global.numSamples += stats.numSamples
		global.numErrors += stats.numErrors
		global.numTimes += stats.numTimes
	}

	if global.numSamples > 0 {
		global.min = minDur
		global.avg = global.cdur / time.Duration(global.numSamples)
	}
	if globalDuration > 0 {
		global.ops = int(float64(global.numSamples) / globalDuration.Seconds())
	}

	return global
}

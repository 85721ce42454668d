package simulator

import (
	"math/rand"

	"github.com/cjliu20152/qiskit/pkg/provider"
)

// sampleShots repeats the discriminated measurement shot by shot and fills
// the result fields the requested measurement level needs. The RNG is owned
// by the caller so seeded runs reproduce exactly.
func sampleShots(res *provider.Result, acqs []acquisition, opts provider.RunOpts, params Params, rng *rand.Rand) {
	if len(acqs) == 0 {
		// A schedule without acquisitions is legal: every shot reads
		// all-zero memory.
		if opts.MeasLevel == provider.MeasLevelClassified {
			res.Counts = provider.Counts{provider.HexKey(0): opts.Shots}
		}
		return
	}

	slots := 0
	for _, acq := range acqs {
		if acq.slot >= slots {
			slots = acq.slot + 1
		}
	}

	var (
		counts = make(provider.Counts)
		sumIQ  = make([]provider.IQ, slots)
		single [][]provider.IQ
	)
	if opts.MeasLevel == provider.MeasLevelKerneled && opts.MeasReturn == "single" {
		single = make([][]provider.IQ, 0, opts.Shots)
	}

	for shot := 0; shot < opts.Shots; shot++ {
		var bits uint64
		points := make([]provider.IQ, slots)
		for _, acq := range acqs {
			bit := rng.Float64() < acq.prob1
			if params.ReadoutError > 0 && rng.Float64() < params.ReadoutError {
				bit = !bit
			}
			if bit {
				bits |= 1 << uint(acq.slot)
			}
			if opts.MeasLevel == provider.MeasLevelKerneled {
				points[acq.slot] = iqPoint(bit, params, rng)
			}
		}
		switch opts.MeasLevel {
		case provider.MeasLevelClassified:
			counts[provider.HexKey(bits)]++
		case provider.MeasLevelKerneled:
			for s := range points {
				sumIQ[s][0] += points[s][0]
				sumIQ[s][1] += points[s][1]
			}
			if single != nil {
				single = append(single, points)
			}
		}
	}

	switch opts.MeasLevel {
	case provider.MeasLevelClassified:
		res.Counts = counts
	case provider.MeasLevelKerneled:
		if opts.Shots > 0 {
			avg := make([]provider.IQ, slots)
			for s := range sumIQ {
				avg[s][0] = sumIQ[s][0] / float64(opts.Shots)
				avg[s][1] = sumIQ[s][1] / float64(opts.Shots)
			}
			res.AvgIQ = avg
		}
		res.MemoryIQ = single
	}
}

// iqPoint draws one kerneled readout point around the bit's center.
func iqPoint(bit bool, params Params, rng *rand.Rand) provider.IQ {
	center := iqGround
	if bit {
		center = iqExcited
	}
	return provider.IQ{
		center[0] + rng.NormFloat64()*params.IQSigma,
		center[1] + rng.NormFloat64()*params.IQSigma,
	}
}

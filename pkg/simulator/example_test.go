package simulator_test

import (
	"context"
	"fmt"

	"github.com/cjliu20152/qiskit/pkg/provider"
	"github.com/cjliu20152/qiskit/pkg/pulse"
	"github.com/cjliu20152/qiskit/pkg/simulator"
)

// Example walks the whole toolkit end to end: get a backend from the
// provider, build a schedule that flips qubit 0 and measures it, run the
// schedule as a job, and read the counts off the result.
func Example() {
	ctx := context.Background()

	prov := simulator.NewProvider(nil)
	backend, err := prov.Backend(ctx, "sim1q")
	if err != nil {
		fmt.Println(err)
		return
	}

	// An amp-0.5 square pulse of 100 ticks is a pi rotation on this
	// device, taking |0> to |1>.
	xPulse, err := pulse.Constant(100, 0.5, &pulse.WaveformOpts{Name: "xpulse"})
	if err != nil {
		fmt.Println(err)
		return
	}

	sched := pulse.NewSchedule("flip")
	play, _ := pulse.NewPlay(xPulse, pulse.DriveChannel(0))
	if err := sched.Insert(0, play); err != nil {
		fmt.Println(err)
		return
	}
	acq, _ := pulse.NewAcquire(1200, pulse.AcquireChannel(0), pulse.MemorySlot(0))
	if err := sched.Insert(100, acq); err != nil {
		fmt.Println(err)
		return
	}

	job, err := backend.Run(ctx, sched, &provider.RunOpts{Shots: 1024, Seed: 12345})
	if err != nil {
		fmt.Println(err)
		return
	}
	result, err := job.Result(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	counts, err := result.GetCounts()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("backend %s measured %s\n", result.Backend, counts)
	// Output: backend sim1q measured {0x1: 1024}
}

package pulse

import (
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"
)

var scheduleSeq atomic.Int64

// ScheduledInstruction is an instruction bound to a start time in dt ticks.
type ScheduledInstruction struct {
	Start       int64
	Instruction Instruction
}

// Stop returns the first tick after the instruction finishes.
func (si ScheduledInstruction) Stop() int64 {
	return si.Start + si.Instruction.Duration()
}

// timeslot is a half-open occupied interval [t0, t1) on one channel.
type timeslot struct {
	t0, t1 int64
}

// Schedule is a named program of instructions bound to start times. Every
// channel owns a disjoint set of timeslots: two instructions may share a
// channel only if their intervals do not overlap. Zero-duration frame
// changes never occupy a slot and can sit anywhere.
type Schedule struct {
	name  string
	insts []ScheduledInstruction
	slots map[Channel][]timeslot
}

// NewSchedule creates an empty schedule. An automatic name is assigned when
// name is empty.
func NewSchedule(name string) *Schedule {
	if name == "" {
		name = "sched" + strconv.FormatInt(scheduleSeq.Add(1), 10)
	}
	return &Schedule{
		name:  name,
		slots: make(map[Channel][]timeslot),
	}
}

// Name returns the schedule name.
func (s *Schedule) Name() string { return s.name }

// Len returns the number of scheduled instructions.
func (s *Schedule) Len() int { return len(s.insts) }

// Insert places an instruction at an absolute start time. It fails without
// modifying the schedule if the start time is negative or the instruction
// would overlap an occupied timeslot on any of its channels.
func (s *Schedule) Insert(start int64, instr Instruction) error {
	if instr == nil {
		return ErrNilInstruction
	}
	if start < 0 {
		return fmt.Errorf("insert %s at %d: %w", instr.Name(), start, ErrNegativeTime)
	}
	slot := timeslot{t0: start, t1: start + instr.Duration()}
	for _, ch := range instr.Channels() {
		if err := s.checkFree(ch, slot); err != nil {
			return fmt.Errorf("insert %s at %d: %w", instr.Name(), start, err)
		}
	}
	s.commit(start, instr, slot)
	return nil
}

// Append places an instruction at the earliest time every one of its
// channels has finished, i.e. the maximum stop time across them. It returns
// the chosen start time.
func (s *Schedule) Append(instr Instruction) (int64, error) {
	if instr == nil {
		return 0, ErrNilInstruction
	}
	var start int64
	for _, ch := range instr.Channels() {
		if stop := s.ChannelStop(ch); stop > start {
			start = stop
		}
	}
	if err := s.Insert(start, instr); err != nil {
		return 0, err
	}
	return start, nil
}

// Shift moves every instruction by delta ticks. It fails without modifying
// the schedule if any instruction would land before tick zero.
func (s *Schedule) Shift(delta int64) error {
	for _, si := range s.insts {
		if si.Start+delta < 0 {
			return fmt.Errorf("shift by %d: %w", delta, ErrNegativeTime)
		}
	}
	for i := range s.insts {
		s.insts[i].Start += delta
	}
	for ch, slots := range s.slots {
		for i := range slots {
			slots[i].t0 += delta
			slots[i].t1 += delta
		}
		s.slots[ch] = slots
	}
	return nil
}

// Merge inserts every instruction of other, shifted by at ticks, into s.
// The merge is atomic: if any instruction would conflict, s is unchanged.
func (s *Schedule) Merge(at int64, other *Schedule) error {
	if other == nil {
		return nil
	}
	for _, si := range other.insts {
		start := si.Start + at
		if start < 0 {
			return fmt.Errorf("merge %s at %d: %w", other.name, at, ErrNegativeTime)
		}
		slot := timeslot{t0: start, t1: start + si.Instruction.Duration()}
		for _, ch := range si.Instruction.Channels() {
			if err := s.checkFree(ch, slot); err != nil {
				return fmt.Errorf("merge %s at %d: %w", other.name, at, err)
			}
		}
	}
	for _, si := range other.insts {
		start := si.Start + at
		s.commit(start, si.Instruction, timeslot{t0: start, t1: start + si.Instruction.Duration()})
	}
	return nil
}

// StartTime returns the earliest instruction start, or zero when empty.
func (s *Schedule) StartTime() int64 {
	if len(s.insts) == 0 {
		return 0
	}
	min := s.insts[0].Start
	for _, si := range s.insts[1:] {
		if si.Start < min {
			min = si.Start
		}
	}
	return min
}

// StopTime returns the first tick after the last instruction finishes.
func (s *Schedule) StopTime() int64 {
	var max int64
	for _, si := range s.insts {
		if stop := si.Stop(); stop > max {
			max = stop
		}
	}
	return max
}

// Duration returns the schedule length in dt ticks, counted from tick zero.
func (s *Schedule) Duration() int64 { return s.StopTime() }

// ChannelStop returns the first tick after the last instruction touching ch
// finishes, counting zero-duration frame changes at their start tick.
func (s *Schedule) ChannelStop(ch Channel) int64 {
	var max int64
	for _, si := range s.insts {
		for _, c := range si.Instruction.Channels() {
			if c == ch {
				if stop := si.Stop(); stop > max {
					max = stop
				}
			}
		}
	}
	return max
}

// Channels returns every channel the schedule touches, ordered by kind and
// index.
func (s *Schedule) Channels() []Channel {
	seen := make(map[Channel]struct{})
	for _, si := range s.insts {
		for _, ch := range si.Instruction.Channels() {
			seen[ch] = struct{}{}
		}
	}
	out := make([]Channel, 0, len(seen))
	for ch := range seen {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].kind != out[j].kind {
			return out[i].kind < out[j].kind
		}
		return out[i].index < out[j].index
	})
	return out
}

// Instructions returns the scheduled instructions ordered by start time.
// Instructions sharing a start time keep their insertion order.
func (s *Schedule) Instructions() []ScheduledInstruction {
	out := make([]ScheduledInstruction, len(s.insts))
	copy(out, s.insts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// String implements fmt.Stringer.
func (s *Schedule) String() string {
	return fmt.Sprintf("Schedule(%s, %d instructions, %d ticks)", s.name, len(s.insts), s.Duration())
}

func (s *Schedule) checkFree(ch Channel, slot timeslot) error {
	if slot.t0 == slot.t1 {
		// Frame changes take no time and never collide.
		return nil
	}
	slots := s.slots[ch]
	i := sort.Search(len(slots), func(i int) bool {
		return slots[i].t1 > slot.t0
	})
	if i < len(slots) && slots[i].t0 < slot.t1 {
		return fmt.Errorf("channel %s busy in [%d, %d): %w", ch, slots[i].t0, slots[i].t1, ErrTimeslotOverlap)
	}
	return nil
}

func (s *Schedule) commit(start int64, instr Instruction, slot timeslot) {
	s.insts = append(s.insts, ScheduledInstruction{Start: start, Instruction: instr})
	if slot.t0 == slot.t1 {
		return
	}
	for _, ch := range instr.Channels() {
		slots := s.slots[ch]
		i := sort.Search(len(slots), func(i int) bool {
			return slots[i].t0 >= slot.t0
		})
		slots = append(slots, timeslot{})
		copy(slots[i+1:], slots[i:])
		slots[i] = slot
		s.slots[ch] = slots
	}
}

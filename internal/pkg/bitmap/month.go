// Package bitmap holds the per-month attendance bit vector used for sign-in
// streaks. Bit i represents day i+1 of the month.
package bitmap

import "math/bits"

// MaxDays is the widest month.
const MaxDays = 31

// Month is a fixed-width 31-bit vector. The zero value is an empty month.
// Days outside 1..MaxDays are ignored by every method.
type Month struct {
	bits uint32
}

func valid(day int) bool { return day >= 1 && day <= MaxDays }

func (m Month) Has(day int) bool {
	if !valid(day) {
		return false
	}
	return m.bits&(1<<uint(day-1)) != 0
}

func (m *Month) Set(day int) {
	if !valid(day) {
		return
	}
	m.bits |= 1 << uint(day-1)
}

// TestAndSet sets the bit for day and reports whether it was already set.
func (m *Month) TestAndSet(day int) bool {
	if !valid(day) {
		return false
	}
	was := m.Has(day)
	m.Set(day)
	return was
}

// RunEndingAt counts consecutive set days walking backward from day,
// stopping at the first gap. Zero when day itself is not set.
func (m Month) RunEndingAt(day int) int {
	if !valid(day) {
		return 0
	}
	// Shift so that day is the top bit of the window, then count leading ones.
	window := m.bits << uint(32-day)
	return bits.LeadingZeros32(^window)
}

// Count returns how many of days 1..upTo are set.
func (m Month) Count(upTo int) int {
	if upTo <= 0 {
		return 0
	}
	if upTo > MaxDays {
		upTo = MaxDays
	}
	mask := uint32(1)<<uint(upTo) - 1
	return bits.OnesCount32(m.bits & mask)
}

// Days renders days 1..upTo as 0/1 values, index 0 being day 1.
func (m Month) Days(upTo int) []byte {
	if upTo <= 0 {
		return []byte{}
	}
	if upTo > MaxDays {
		upTo = MaxDays
	}
	out := make([]byte, upTo)
	for d := 1; d <= upTo; d++ {
		if m.Has(d) {
			out[d-1] = 1
		}
	}
	return out
}

// FromBytes decodes a Redis string bitmap where offset n lives in byte n/8
// at bit 7-(n%8). Missing trailing bytes read as zero.
func FromBytes(raw []byte) Month {
	var m Month
	for off := 0; off < MaxDays; off++ {
		idx := off / 8
		if idx >= len(raw) {
			break
		}
		if raw[idx]&(0x80>>uint(off%8)) != 0 {
			m.bits |= 1 << uint(off)
		}
	}
	return m
}

// Bytes encodes m in the Redis string bitmap layout accepted by FromBytes.
func (m Month) Bytes() []byte {
	out := make([]byte, 4)
	for off := 0; off < MaxDays; off++ {
		if m.bits&(1<<uint(off)) != 0 {
			out[off/8] |= 0x80 >> uint(off%8)
		}
	}
	return out
}

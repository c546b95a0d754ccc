package mapper

import "container/heap"

// candidateMatch is one (currentIndex, lastIndex) pairing with its squared
// distance, used by the §4.5.3 no-tracking-id assignment algorithm.
type candidateMatch struct {
	curIdx, lastIdx int
	distSq          int64
}

type matchHeap []candidateMatch

func (h matchHeap) Len() int            { return len(h) }
func (h matchHeap) Less(i, j int) bool  { return h[i].distSq < h[j].distSq }
func (h matchHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *matchHeap) Push(x interface{}) { *h = append(*h, x.(candidateMatch)) }
func (h *matchHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// assignPointerIDsGreedy implements §4.5.3 for the MT type-A "anonymous
// blob" dialect, which has no kernel tracking id (the single-touch decoder
// needs no matching: it always reports pointer id 0): keep pointer ids stable across frames by greedily matching each current
// raw position to the closest last-frame position, skipping positions
// already claimed on either side, then handing fresh ids to whatever is
// left over.
func assignPointerIDsGreedy(curX, curY []int32, lastIDs []uint32, lastX, lastY []int32) []uint32 {
	n := len(curX)
	ids := make([]uint32, n)
	matchedCur := make([]bool, n)
	matchedLast := make([]bool, len(lastIDs))

	h := &matchHeap{}
	heap.Init(h)
	for ci := 0; ci < n; ci++ {
		for li := range lastIDs {
			dx := int64(curX[ci] - lastX[li])
			dy := int64(curY[ci] - lastY[li])
			heap.Push(h, candidateMatch{curIdx: ci, lastIdx: li, distSq: dx*dx + dy*dy})
		}
	}
	for h.Len() > 0 {
		m := heap.Pop(h).(candidateMatch)
		if matchedCur[m.curIdx] || matchedLast[m.lastIdx] {
			continue
		}
		matchedCur[m.curIdx] = true
		matchedLast[m.lastIdx] = true
		ids[m.curIdx] = lastIDs[m.lastIdx]
	}

	var used uint32mask
	for ci, matched := range matchedCur {
		if matched {
			used.set(ids[ci])
		}
	}
	for ci, matched := range matchedCur {
		if !matched {
			id := used.firstUnused()
			used.set(id)
			ids[ci] = id
		}
	}
	return ids
}

// uint32mask is a tiny local bitset, avoiding a dependency on input's
// 32-pointer-capped PointerBitset for an algorithm that should remain
// independent of that package's pointer-count ceiling.
type uint32mask uint64

func (m *uint32mask) set(id uint32) { *m |= 1 << id }
func (m *uint32mask) clear(id uint32) { *m &^= 1 << id }
func (m uint32mask) has(id uint32) bool { return m&(1<<id) != 0 }
func (m uint32mask) firstUnused() uint32 {
	for i := uint32(0); i < 32; i++ {
		if !m.has(i) {
			return i
		}
	}
	return 31
}

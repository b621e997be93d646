package routing

import (
	"arcade/domain"
	"container/heap"
	"slices"
)

type item struct {
	station string
	minutes int
}

type queue []item

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].minutes != q[j].minutes {
		return q[i].minutes < q[j].minutes
	}
	return q[i].station < q[j].station
}
func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any) { *q = append(*q, x.(item)) }
func (q *queue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// ShortestPath returns the fastest route from -> to and its travel time in
// minutes. ok is false if to cannot be reached.
func ShortestPath(g domain.StationGraph, from, to string) (path []string, minutes int, ok bool) {
	if _, exists := g[from]; !exists {
		return nil, 0, false
	}
	if _, exists := g[to]; !exists {
		return nil, 0, false
	}

	dist := map[string]int{from: 0}
	prev := map[string]string{}
	done := map[string]bool{}
	q := &queue{{station: from}}

	for q.Len() > 0 {
		cur := heap.Pop(q).(item)
		if done[cur.station] {
			continue
		}
		done[cur.station] = true
		if cur.station == to {
			break
		}

		for _, c := range g[cur.station].Connections {
			if _, exists := g[c.To]; !exists || done[c.To] {
				continue
			}
			d := cur.minutes + c.Minutes
			if best, seen := dist[c.To]; !seen || d < best {
				dist[c.To] = d
				prev[c.To] = cur.station
				heap.Push(q, item{station: c.To, minutes: d})
			}
		}
	}

	if !done[to] {
		return nil, 0, false
	}

	for at := to; ; at = prev[at] {
		path = append(path, at)
		if at == from {
			break
		}
	}
	slices.Reverse(path)
	return path, dist[to], true
}

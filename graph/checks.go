// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package graph

import "sort"

// FindCycle runs a DFS over the primary (non-secondary) edges, directed
// from each join's owning object to its target, and returns the object
// names forming the first cycle found, or nil if the primary join graph
// is acyclic.
func (g *JoinGraph) FindCycle() []string {
	adj := make(map[string][]string)
	for _, e := range g.PrimaryEdges() {
		adj[e.From] = append(adj[e.From], e.To)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var path []string
	var cycle []string

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		path = append(path, node)
		for _, next := range adj[node] {
			switch color[next] {
			case white:
				if visit(next) {
					return true
				}
			case gray:
				// found the back-edge; slice the path from next's first
				// occurrence to build the cycle.
				for i, n := range path {
					if n == next {
						cycle = append([]string{}, path[i:]...)
						cycle = append(cycle, next)
						break
					}
				}
				return true
			}
		}
		path = path[:len(path)-1]
		color[node] = black
		return false
	}

	nodes := make([]string, 0, len(adj))
	for n := range adj {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	for _, n := range nodes {
		if color[n] == white {
			if visit(n) {
				return cycle
			}
		}
	}
	return nil
}

// MultipathPair is a pair of objects reached from one another through two
// independent primary join paths (a "diamond"). A is always the BFS start
// object the ambiguity was discovered from.
type MultipathPair struct {
	A, B  string
	Paths int
}

// FindMultipaths walks a BFS-first-parent search from every object that
// owns at least one primary join, mirroring the original's
// _check_no_multipath_joins: a node reached from two different parents is
// a diamond, UNLESS that node is also a direct neighbor of the start —
// a direct edge combined with an indirect path is the canonical case and
// is never flagged.
func (g *JoinGraph) FindMultipaths() []MultipathPair {
	adj := make(map[string][]string)
	for _, e := range g.PrimaryEdges() {
		adj[e.From] = append(adj[e.From], e.To)
	}

	var pairs []MultipathPair
	reported := make(map[string]bool)

	for _, obj := range g.model.Objects {
		start := obj.Name
		neighbors := adj[start]
		if len(neighbors) == 0 {
			continue
		}

		direct := make(map[string]bool)
		firstParent := make(map[string]string)
		var queue []string
		for _, n := range neighbors {
			if n == start {
				continue
			}
			direct[n] = true
			if _, ok := firstParent[n]; !ok {
				firstParent[n] = start
				queue = append(queue, n)
			}
		}

		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			for _, next := range adj[node] {
				if next == start {
					continue
				}
				if _, ok := firstParent[next]; !ok {
					firstParent[next] = node
					queue = append(queue, next)
					continue
				}
				if firstParent[next] == node {
					continue
				}
				// Reached from two distinct parents: a diamond, unless
				// next is also a direct neighbor of start.
				if direct[next] {
					continue
				}
				key := pairKey(start, next)
				if reported[key] {
					continue
				}
				reported[key] = true
				pairs = append(pairs, MultipathPair{A: start, B: next, Paths: 2})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

package index

import "github.com/siherrmann/lexgrapher/model"

// TraversalResult contains a record and its distance from the source
type TraversalResult struct {
	Record   model.Record
	Distance int
	Path     []model.Key // Path from source to this record
}

// Descendants performs breadth-first search from r over child relations.
// The first result is r itself at distance 0. maxDepth limits the distance, a negative value means no limit.
func (idx *Index) Descendants(r model.Record, maxDepth int) []*TraversalResult {
	visited := map[node]bool{nodeOf(r): true}
	queue := []TraversalResult{{
		Record:   r,
		Distance: 0,
		Path:     []model.Key{r.Key()},
	}}

	var results []*TraversalResult
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		results = append(results, &current)

		if maxDepth >= 0 && current.Distance >= maxDepth {
			continue
		}

		for _, child := range idx.children[nodeOf(current.Record)] {
			n := nodeOf(child)
			if visited[n] {
				continue
			}
			visited[n] = true

			newPath := make([]model.Key, len(current.Path), len(current.Path)+1)
			copy(newPath, current.Path)
			newPath = append(newPath, child.Key())

			queue = append(queue, TraversalResult{
				Record:   child,
				Distance: current.Distance + 1,
				Path:     newPath,
			})
		}
	}

	return results
}

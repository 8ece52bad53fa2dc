package github

import "sort"

// SortLanguages counts the primary language of each repository and returns
// them most used first. Ties keep the order the languages first appear in.
func SortLanguages(repos []Repo) []string {
	counts := make(map[string]int)
	var order []string
	for _, r := range repos {
		if r.Language == "" || r.Language == "null" {
			continue
		}
		if counts[r.Language] == 0 {
			order = append(order, r.Language)
		}
		counts[r.Language]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order
}

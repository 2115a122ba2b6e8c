// Package apriori mines frequent itemsets and association rules from a
// bill-by-SKU presence matrix.
package apriori

import (
	"sort"
	"strings"
)

// Itemset is a frequent set of SKUs with its support over all baskets.
type Itemset struct {
	Items   []string `json:"items"`
	Support float64  `json:"support"`
}

// Rule is an association rule derived from a frequent itemset.
type Rule struct {
	Antecedents []string `json:"antecedents"`
	Consequents []string `json:"consequents"`
	Support     float64  `json:"support"`
	Confidence  float64  `json:"confidence"`
	Lift        float64  `json:"lift"`
}

// Baskets groups bill lines into per-bill item sets.
type Baskets map[string]map[string]bool

// Add records that an item appeared on a bill.
func (b Baskets) Add(bill, item string) {
	set, ok := b[bill]
	if !ok {
		set = make(map[string]bool)
		b[bill] = set
	}
	set[item] = true
}

// FrequentItemsets mines all itemsets with support >= minSupport, level by
// level: candidates of size k+1 are joins of frequent k-itemsets sharing a
// prefix, pruned by a support count over the baskets.
func FrequentItemsets(baskets Baskets, minSupport float64) []Itemset {
	n := len(baskets)
	if n == 0 {
		return nil
	}
	minCount := minSupport * float64(n)

	counts := make(map[string]int)
	for _, set := range baskets {
		for item := range set {
			counts[item]++
		}
	}
	var level [][]string
	var out []Itemset
	for item, c := range counts {
		if float64(c) >= minCount {
			level = append(level, []string{item})
			out = append(out, Itemset{Items: []string{item}, Support: float64(c) / float64(n)})
		}
	}
	sortSets(level)

	for len(level) > 0 {
		var next [][]string
		for i := 0; i < len(level); i++ {
			for j := i + 1; j < len(level); j++ {
				cand, ok := join(level[i], level[j])
				if !ok {
					continue
				}
				c := countSupport(baskets, cand)
				if float64(c) >= minCount {
					next = append(next, cand)
					out = append(out, Itemset{Items: cand, Support: float64(c) / float64(n)})
				}
			}
		}
		sortSets(next)
		level = next
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Support > out[j].Support })
	return out
}

// join merges two sorted k-itemsets sharing the first k-1 items.
func join(a, b []string) ([]string, bool) {
	k := len(a)
	for i := 0; i < k-1; i++ {
		if a[i] != b[i] {
			return nil, false
		}
	}
	if a[k-1] >= b[k-1] {
		return nil, false
	}
	cand := make([]string, k+1)
	copy(cand, a)
	cand[k] = b[k-1]
	return cand, true
}

func countSupport(baskets Baskets, items []string) int {
	var c int
	for _, set := range baskets {
		ok := true
		for _, item := range items {
			if !set[item] {
				ok = false
				break
			}
		}
		if ok {
			c++
		}
	}
	return c
}

func sortSets(sets [][]string) {
	sort.Slice(sets, func(i, j int) bool {
		return strings.Join(sets[i], "\x00") < strings.Join(sets[j], "\x00")
	})
}

// Rules derives association rules from the frequent itemsets, keeping those
// with lift >= minLift and confidence >= minConfidence. Every non-empty
// proper subset of an itemset is tried as antecedent.
func Rules(itemsets []Itemset, minLift, minConfidence float64) []Rule {
	support := make(map[string]float64, len(itemsets))
	for _, is := range itemsets {
		support[key(is.Items)] = is.Support
	}

	var rules []Rule
	for _, is := range itemsets {
		k := len(is.Items)
		if k < 2 {
			continue
		}
		for mask := 1; mask < (1 << k); mask++ {
			if mask == (1<<k)-1 {
				continue
			}
			var ante, cons []string
			for bit := 0; bit < k; bit++ {
				if mask&(1<<bit) != 0 {
					ante = append(ante, is.Items[bit])
				} else {
					cons = append(cons, is.Items[bit])
				}
			}
			anteSup, ok1 := support[key(ante)]
			consSup, ok2 := support[key(cons)]
			if !ok1 || !ok2 || anteSup == 0 || consSup == 0 {
				continue
			}
			conf := is.Support / anteSup
			lift := conf / consSup
			if lift >= minLift && conf >= minConfidence {
				rules = append(rules, Rule{
					Antecedents: ante,
					Consequents: cons,
					Support:     is.Support,
					Confidence:  conf,
					Lift:        lift,
				})
			}
		}
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Lift != rules[j].Lift {
			return rules[i].Lift > rules[j].Lift
		}
		return key(rules[i].Antecedents) < key(rules[j].Antecedents)
	})
	return rules
}

func key(items []string) string {
	s := append([]string(nil), items...)
	sort.Strings(s)
	return strings.Join(s, "\x00")
}

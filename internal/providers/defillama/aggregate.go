package defillama

import (
	"sort"
	"strings"
)

// excludedProtocol reports whether a protocol category is filtered out of
// every aggregation: centralized exchanges are not on-chain activity.
func excludedProtocol(category string) bool {
	switch strings.ToLower(category) {
	case "cex", "centralized exchange":
		return true
	}
	return false
}

// excludedChainName reports whether a chain entry is a pseudo-entity
// rather than a real network.
func excludedChainName(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return n == "off chain" || n == "offchain" || n == "multi-chain"
}

// chainTotals keeps accumulation sums plus first-seen order so that ties
// in the later sort retain provider order.
type chainTotals struct {
	sums  map[string]float64
	order []string
}

// accumulateByChain splits each protocol's metric evenly across its listed
// valid chains and accumulates per-chain totals. CEX protocols and
// pseudo-chains contribute nothing.
//
// The even split is a documented approximation: upstream does not say how a
// multi-chain protocol's total is actually distributed.
func accumulateByChain(protocols []llamaOverviewProtocol, metric func(llamaOverviewProtocol) float64) chainTotals {
	t := chainTotals{sums: make(map[string]float64)}
	for _, p := range protocols {
		if excludedProtocol(p.Category) {
			continue
		}
		valid := make([]string, 0, len(p.Chains))
		for _, c := range p.Chains {
			if !excludedChainName(c) {
				valid = append(valid, c)
			}
		}
		if len(valid) == 0 {
			continue
		}
		share := metric(p) / float64(len(valid))
		for _, c := range valid {
			if _, seen := t.sums[c]; !seen {
				t.order = append(t.order, c)
			}
			t.sums[c] += share
		}
	}
	return t
}

// sortDescStable sorts rows descending by key, keeping input order on ties.
func sortDescStable[T any](rows []T, key func(T) float64) {
	sort.SliceStable(rows, func(i, j int) bool {
		return key(rows[i]) > key(rows[j])
	})
}

// truncate returns at most n rows.
func truncate[T any](rows []T, n int) []T {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

package protocol

import "strings"

// MaxComplexTargets is the peer's limit on targets in one complex query.
const MaxComplexTargets = 100

const (
	queryTypeSimple  = "simple"
	queryTypeComplex = "complex"
)

// PriceQuery is one target of a multi-price subscription.
type PriceQuery struct {
	Address   string
	ChartType ChartType
	Currency  Currency
}

func (q PriceQuery) clause() string {
	return "(address = " + q.Address + " AND chartType = " + string(q.ChartType) +
		" AND currency = " + string(q.Currency) + ")"
}

func priceQuery(queries []PriceQuery) (string, error) {
	const op = "multi_price_subscription"
	if err := checkTargets(op, len(queries)); err != nil {
		return "", err
	}
	clauses := make([]string, 0, len(queries))
	for _, q := range queries {
		if err := checkChart(op, q.ChartType); err != nil {
			return "", err
		}
		clauses = append(clauses, q.clause())
	}
	return strings.Join(clauses, " OR "), nil
}

// txsQuery renders token addresses before pair addresses, each in input order.
func txsQuery(tokens, pairs []string) (string, error) {
	if err := checkTargets("multi_txs_subscription", len(tokens)+len(pairs)); err != nil {
		return "", err
	}
	clauses := make([]string, 0, len(tokens)+len(pairs))
	for _, a := range tokens {
		clauses = append(clauses, "address = "+a)
	}
	for _, p := range pairs {
		clauses = append(clauses, "pairAddress = "+p)
	}
	return strings.Join(clauses, " OR "), nil
}

func checkTargets(op string, n int) error {
	switch {
	case n == 0:
		return validationError(op, "query", "at least one target is required")
	case n > MaxComplexTargets:
		return validationError(op, "query", "%d targets exceed the limit of %d", n, MaxComplexTargets)
	}
	return nil
}

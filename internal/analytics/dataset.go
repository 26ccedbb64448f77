package analytics

import "fmt"

// Subject tables answerable by the mock warehouse.
const (
	TableSales     = "sales"
	TableCustomers = "customers"
	TableProducts  = "products"
)

var subjectTables = []string{TableSales, TableCustomers, TableProducts}

// months is the time dimension shared by the sales dataset and each
// product's per-month series.
var months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

// tableColumns is the canonical column order per table, used when a minimal
// axis configuration has to be derived without a chart recommendation.
var tableColumns = map[string][]string{
	TableSales:     {"month", "revenue", "expenses", "profit", "region"},
	TableCustomers: {"id", "name", "segment", "annualSpend", "loyaltyYears", "lastPurchase"},
	TableProducts:  {"id", "name", "category", "unitPrice", "monthlySales"},
}

var salesRows = []Row{
	{"month": "Jan", "revenue": 45000, "expenses": 32000, "profit": 13000, "region": "North"},
	{"month": "Feb", "revenue": 52000, "expenses": 34000, "profit": 18000, "region": "North"},
	{"month": "Mar", "revenue": 61000, "expenses": 36000, "profit": 25000, "region": "North"},
	{"month": "Apr", "revenue": 58000, "expenses": 35000, "profit": 23000, "region": "North"},
	{"month": "May", "revenue": 63000, "expenses": 37000, "profit": 26000, "region": "North"},
	{"month": "Jun", "revenue": 72000, "expenses": 39000, "profit": 33000, "region": "North"},
	{"month": "Jan", "revenue": 38000, "expenses": 28000, "profit": 10000, "region": "South"},
	{"month": "Feb", "revenue": 41000, "expenses": 29000, "profit": 12000, "region": "South"},
	{"month": "Mar", "revenue": 45000, "expenses": 31000, "profit": 14000, "region": "South"},
	{"month": "Apr", "revenue": 49000, "expenses": 32000, "profit": 17000, "region": "South"},
	{"month": "May", "revenue": 51000, "expenses": 33000, "profit": 18000, "region": "South"},
	{"month": "Jun", "revenue": 56000, "expenses": 35000, "profit": 21000, "region": "South"},
}

var customerRows = []Row{
	{"id": 1, "name": "Acme Corp", "segment": "Enterprise", "annualSpend": 120000, "loyaltyYears": 5, "lastPurchase": "2025-03-15"},
	{"id": 2, "name": "TechStart Inc", "segment": "SMB", "annualSpend": 45000, "loyaltyYears": 2, "lastPurchase": "2025-04-01"},
	{"id": 3, "name": "BigRetail", "segment": "Enterprise", "annualSpend": 210000, "loyaltyYears": 7, "lastPurchase": "2025-03-28"},
	{"id": 4, "name": "Local Shop", "segment": "Small", "annualSpend": 15000, "loyaltyYears": 1, "lastPurchase": "2025-02-10"},
	{"id": 5, "name": "MidMarket Solutions", "segment": "SMB", "annualSpend": 78000, "loyaltyYears": 3, "lastPurchase": "2025-03-22"},
	{"id": 6, "name": "Global Industries", "segment": "Enterprise", "annualSpend": 350000, "loyaltyYears": 10, "lastPurchase": "2025-04-05"},
	{"id": 7, "name": "Corner Cafe", "segment": "Small", "annualSpend": 9000, "loyaltyYears": 2, "lastPurchase": "2025-03-30"},
	{"id": 8, "name": "Tech Giants", "segment": "Enterprise", "annualSpend": 500000, "loyaltyYears": 4, "lastPurchase": "2025-04-10"},
}

var productRows = []Row{
	{"id": "P001", "name": "Basic Plan", "category": "Subscription", "unitPrice": 29.99, "monthlySales": []int{120, 125, 118, 130, 142, 155}},
	{"id": "P002", "name": "Premium Plan", "category": "Subscription", "unitPrice": 99.99, "monthlySales": []int{45, 48, 52, 55, 60, 62}},
	{"id": "P003", "name": "Enterprise Solution", "category": "Service", "unitPrice": 599.99, "monthlySales": []int{12, 15, 14, 18, 20, 22}},
	{"id": "P004", "name": "Data Package", "category": "Add-on", "unitPrice": 49.99, "monthlySales": []int{67, 70, 65, 72, 80, 85}},
	{"id": "P005", "name": "API Access", "category": "Add-on", "unitPrice": 199.99, "monthlySales": []int{28, 30, 32, 35, 40, 42}},
	{"id": "P006", "name": "Consulting Hours", "category": "Service", "unitPrice": 150.0, "monthlySales": []int{50, 45, 48, 52, 55, 60}},
}

// DatasetFor returns a copy of the fixed dataset for a subject table.
// Rows are copied shallowly so pipeline runs never share mutable state.
func DatasetFor(table string) []Row {
	var src []Row
	switch table {
	case TableSales:
		src = salesRows
	case TableCustomers:
		src = customerRows
	case TableProducts:
		src = productRows
	default:
		return nil
	}
	out := make([]Row, len(src))
	for i, r := range src {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

// TransformProductRows projects the row-per-product catalog into a
// row-per-month time series when the chart's x-axis is the time dimension:
// one row per month, one column per product name. The result always has
// exactly len(months) rows no matter how many products are present. Inputs
// that cannot produce a single usable series are an error so the caller can
// fall back to the raw rows.
func TransformProductRows(rows []Row, cfg ChartConfig) ([]Row, error) {
	if cfg.XAxis.Key != "month" {
		return rows, nil
	}

	// Only catalog rows carry a monthlySales key; anything else (the
	// sales dataset also charts over months) passes through untouched.
	catalog := false
	usable := 0
	for _, r := range rows {
		if _, present := r["monthlySales"]; !present {
			continue
		}
		catalog = true
		name, _ := r["name"].(string)
		if _, ok := intSeries(r["monthlySales"]); ok && name != "" {
			usable++
		}
	}
	if !catalog {
		return rows, nil
	}
	if usable == 0 {
		return nil, fmt.Errorf("catalog has no usable monthly series in %d rows", len(rows))
	}

	out := make([]Row, 0, len(months))
	for i, m := range months {
		point := Row{"month": m}
		for _, r := range rows {
			name, _ := r["name"].(string)
			sales, ok := intSeries(r["monthlySales"])
			if name == "" || !ok || i >= len(sales) {
				continue
			}
			point[name] = sales[i]
		}
		out = append(out, point)
	}
	return out, nil
}

// intSeries tolerates both the native dataset shape ([]int) and rows that
// have been through a JSON round trip ([]any with float64 values).
func intSeries(v any) ([]int, bool) {
	switch s := v.(type) {
	case []int:
		return s, true
	case []any:
		out := make([]int, 0, len(s))
		for _, e := range s {
			f, ok := e.(float64)
			if !ok {
				return nil, false
			}
			out = append(out, int(f))
		}
		return out, true
	default:
		return nil, false
	}
}

// FallbackChart derives a minimal axis configuration from a table's first
// two canonical columns. Used when the time-series projection fails.
func FallbackChart(table string) ChartConfig {
	cols := tableColumns[table]
	if len(cols) < 2 {
		cols = []string{"x", "y"}
	}
	return ChartConfig{
		XAxis: Axis{Key: cols[0], Label: cols[0]},
		YAxes: []Axis{{Key: cols[1], Label: cols[1], Color: "#8884d8"}},
	}
}

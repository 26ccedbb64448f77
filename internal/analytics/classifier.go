package analytics

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Classification is the classifier's verdict for one question: which
// subject table answers it and how the result should be charted.
type Classification struct {
	Table     string
	ChartType string
	Chart     ChartConfig
}

// Classifier maps a free-text question to a subject table and chart
// recommendation. The shipped implementation is a keyword heuristic with a
// randomized tie-breaker; a real model can be swapped in behind this
// interface without touching the pipeline.
type Classifier interface {
	Classify(question string) Classification
}

type HeuristicClassifier struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeuristicClassifier builds the keyword classifier. seed pins the
// random tie-breaker for reproducible runs; 0 seeds from the clock.
func NewHeuristicClassifier(seed int64) *HeuristicClassifier {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &HeuristicClassifier{rng: rand.New(rand.NewSource(seed))}
}

func (h *HeuristicClassifier) Classify(question string) Classification {
	h.mu.Lock()
	defer h.mu.Unlock()

	table := h.tableFor(question)
	chartType, cfg := h.chartFor(table)
	return Classification{Table: table, ChartType: chartType, Chart: cfg}
}

// tableFor applies the keyword rules; questions matching no rule draw a
// table uniformly at random.
func (h *HeuristicClassifier) tableFor(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "sales") || strings.Contains(q, "revenue") || strings.Contains(q, "profit"):
		return TableSales
	case strings.Contains(q, "customer") || strings.Contains(q, "client"):
		return TableCustomers
	case strings.Contains(q, "product") || strings.Contains(q, "subscription"):
		return TableProducts
	default:
		return subjectTables[h.rng.Intn(len(subjectTables))]
	}
}

func (h *HeuristicClassifier) chartFor(table string) (string, ChartConfig) {
	switch table {
	case TableSales:
		chartType := "multiBar"
		if h.rng.Float64() > 0.5 {
			chartType = "multiLine"
		}
		return chartType, ChartConfig{
			XAxis: Axis{Key: "month", Label: "Month"},
			YAxes: []Axis{
				{Key: "revenue", Label: "Revenue ($)", Color: "#8884d8"},
				{Key: "expenses", Label: "Expenses ($)", Color: "#82ca9d"},
				{Key: "profit", Label: "Profit ($)", Color: "#ffc658"},
			},
		}

	case TableCustomers:
		chartType := "pie"
		if h.rng.Float64() > 0.5 {
			chartType = "bar"
		}
		return chartType, ChartConfig{
			XAxis: Axis{Key: "name", Label: "Customer"},
			YAxes: []Axis{
				{Key: "annualSpend", Label: "Annual Spend ($)", Color: "#8884d8"},
			},
		}

	case TableProducts:
		chartType := "line"
		if h.rng.Float64() > 0.5 {
			chartType = "bar"
		}
		// A line chart over products sometimes upgrades to a monthly
		// time series; the data phase projects the catalog to match.
		if chartType == "line" && h.rng.Float64() > 0.5 {
			return "multiLine", ChartConfig{
				XAxis: Axis{Key: "month", Label: "Month"},
				YAxes: []Axis{
					{Key: "sales", Label: "Monthly Sales", Color: "#8884d8"},
				},
			}
		}
		return chartType, ChartConfig{
			XAxis: Axis{Key: "name", Label: "Product"},
			YAxes: []Axis{
				{Key: "unitPrice", Label: "Unit Price ($)", Color: "#8884d8"},
			},
		}
	}

	return "bar", FallbackChart(table)
}

// TimeFrameLabel is the canned analysis window every inquiry resolves to.
const TimeFrameLabel = "Last 6 months"

// SQLFor returns the fixed query string synthesized for a subject table.
func SQLFor(table string) string {
	switch table {
	case TableSales:
		return "SELECT month, revenue, expenses, profit, region FROM sales WHERE region IN ('North', 'South') ORDER BY month ASC"
	case TableCustomers:
		return "SELECT name, segment, annualSpend, loyaltyYears FROM customers ORDER BY annualSpend DESC"
	case TableProducts:
		return "SELECT id, name, category, unitPrice FROM products ORDER BY unitPrice ASC"
	default:
		return "SELECT * FROM " + table + " LIMIT 10"
	}
}

// NarrativeFor returns the templated answer paragraph for a subject table.
func NarrativeFor(table string) string {
	switch table {
	case TableSales:
		return "Based on our analysis, sales revenue has shown a consistent growth trend over the first half of the year, with the North region outperforming the South. The profit margins appear to be improving month-over-month, with June showing the highest profitability. This suggests that our cost management strategies are working effectively alongside revenue growth."
	case TableCustomers:
		return "The customer data reveals that Enterprise segment clients generate the highest annual spend, with Global Industries being our top customer. However, we should note that SMB clients are growing in number and represent a significant opportunity for expansion. Customer loyalty appears to correlate positively with annual spend, suggesting we should focus on retention strategies for high-value accounts."
	case TableProducts:
		return "Our product analysis indicates that subscription-based offerings generate the most consistent revenue stream. The Basic Plan has the highest volume of sales, while the Enterprise Solution, despite lower volume, contributes significantly to revenue due to its higher price point. Monthly sales trends show growth across all product categories, with Premium Plan showing the most promising growth trajectory."
	default:
		return "Based on the data analysis, we can see several important trends that align with business objectives. The metrics show positive movement in key areas, though there are opportunities for optimization in certain segments. Further analysis may be required to make specific recommendations."
	}
}

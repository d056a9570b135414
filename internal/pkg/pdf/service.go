// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"
	"github.com/your-org/retail-analytics/internal/config"
	"github.com/your-org/retail-analytics/internal/domain/dashboard"
)

// Service renders dashboard snapshots as PDF reports
type Service struct {
	report config.ReportConfig
	loc    *time.Location
	tmpl   *template.Template
}

// NewService creates a new PDF service
func NewService(report config.ReportConfig, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{report: report, loc: loc}
	s.tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
		"money":   s.money,
		"percent": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"date":    func(t time.Time) string { return t.In(s.loc).Format("January 2, 2006") },
		"clock":   func(t time.Time) string { return t.In(s.loc).Format("Jan 2 15:04") },
	}).Parse(reportTemplate))
	return s
}

// ReportData represents the data passed to the report template
type ReportData struct {
	Title       string
	Company     string
	From        time.Time
	To          time.Time
	Region      string
	StoreID     string
	GeneratedAt time.Time
	Source      string
	Mock        bool
	Failed      []string
	Metrics     dashboard.DashboardMetrics
}

// RenderHTML renders the report body for snap
func (s *Service) RenderHTML(snap dashboard.Snapshot) (string, error) {
	data := ReportData{
		Title:       "Retail Dashboard Report",
		Company:     s.report.CompanyName,
		From:        snap.Filter.From,
		// The filter end is exclusive; reports show the last day covered.
		To:          snap.Filter.To.Add(-time.Nanosecond),
		Region:      snap.Filter.Region,
		StoreID:     snap.Filter.StoreID,
		GeneratedAt: snap.GeneratedAt,
		Source:      snap.Source,
		Mock:        snap.Mock,
		Failed:      snap.FailedSections,
		Metrics:     snap.Metrics,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// GenerateReport renders snap to PDF with wkhtmltopdf
func (s *Service) GenerateReport(snap dashboard.Snapshot) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationLandscape)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

func (s *Service) money(d decimal.Decimal) string {
	return s.report.Currency + d.StringFixedBank(2)
}

const reportTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { margin-bottom: 24px; border-bottom: 2px solid #eee; padding-bottom: 12px; }
        .title { font-size: 26px; font-weight: bold; color: #2563eb; }
        .meta { color: #666; font-size: 12px; }
        .warning { background-color: #fef3c7; color: #92400e; padding: 8px; margin-bottom: 16px; }
        .kpis { width: 100%; margin-bottom: 24px; border-collapse: collapse; }
        .kpis td { border: 1px solid #ddd; padding: 12px; width: 25%; }
        .kpi-label { font-size: 12px; color: #666; }
        .kpi-value { font-size: 20px; font-weight: bold; }
        .up { color: #166534; }
        .down { color: #b91c1c; }
        .section-title { font-size: 16px; font-weight: bold; margin: 20px 0 8px; color: #374151; }
        table.data { width: 100%; border-collapse: collapse; }
        table.data th, table.data td { border: 1px solid #ddd; padding: 6px 8px; text-align: left; font-size: 12px; }
        table.data th { background-color: #f8f9fa; }
        .num { text-align: right !important; }
    </style>
</head>
<body>
    <div class="header">
        <div class="title">{{.Title}}</div>
        <div>{{.Company}}</div>
        <div class="meta">
            {{date .From}} to {{date .To}}
            {{if .Region}} &middot; Region: {{.Region}}{{end}}
            {{if .StoreID}} &middot; Store: {{.StoreID}}{{end}}
            &middot; Source: {{.Source}} &middot; Generated {{clock .GeneratedAt}}
        </div>
    </div>

    {{if .Mock}}<div class="warning">Live data was unavailable. Figures below are sample data.</div>{{end}}
    {{if .Failed}}<div class="warning">Some sections could not be loaded: {{range $i, $s := .Failed}}{{if $i}}, {{end}}{{$s}}{{end}}</div>{{end}}

    {{with .Metrics.KPIMetrics}}
    <table class="kpis">
        <tr>
            <td><div class="kpi-label">Total Sales</div><div class="kpi-value">{{money .TotalSales.Value}}</div><div class="{{.TotalSales.Trend}}">{{percent .TotalSales.Change}}</div></td>
            <td><div class="kpi-label">Transactions</div><div class="kpi-value">{{.TransactionCount.Value}}</div><div class="{{.TransactionCount.Trend}}">{{percent .TransactionCount.Change}}</div></td>
            <td><div class="kpi-label">Average Basket</div><div class="kpi-value">{{money .AverageBasket.Value}}</div><div class="{{.AverageBasket.Trend}}">{{percent .AverageBasket.Change}}</div></td>
            <td><div class="kpi-label">Unique Customers</div><div class="kpi-value">{{.UniqueCustomers.Value}}</div><div class="{{.UniqueCustomers.Trend}}">{{percent .UniqueCustomers.Change}}</div></td>
        </tr>
    </table>
    {{end}}

    {{if .Metrics.RegionPerformance}}
    <div class="section-title">Regional Performance</div>
    <table class="data">
        <thead><tr><th>Region</th><th class="num">Sales</th><th class="num">Transactions</th><th class="num">Share</th></tr></thead>
        <tbody>
            {{range .Metrics.RegionPerformance}}
            <tr><td>{{.Region}}</td><td class="num">{{money .Total}}</td><td class="num">{{.Count}}</td><td class="num">{{percent .Share}}</td></tr>
            {{end}}
        </tbody>
    </table>
    {{end}}

    {{if .Metrics.TopProducts}}
    <div class="section-title">Top Products</div>
    <table class="data">
        <thead><tr><th>SKU</th><th>Product</th><th>Brand</th><th>Category</th><th class="num">Units</th><th class="num">Sales</th></tr></thead>
        <tbody>
            {{range .Metrics.TopProducts}}
            <tr><td>{{.ProductID}}</td><td>{{.Name}}</td><td>{{.Brand}}</td><td>{{.Category}}</td><td class="num">{{.Units}}</td><td class="num">{{money .Total}}</td></tr>
            {{end}}
        </tbody>
    </table>
    {{end}}

    {{if .Metrics.TopCategories}}
    <div class="section-title">Categories</div>
    <table class="data">
        <thead><tr><th>Category</th><th class="num">Units</th><th class="num">Sales</th><th class="num">Share</th></tr></thead>
        <tbody>
            {{range .Metrics.TopCategories}}
            <tr><td>{{.Category}}</td><td class="num">{{.Units}}</td><td class="num">{{money .Total}}</td><td class="num">{{percent .Share}}</td></tr>
            {{end}}
        </tbody>
    </table>
    {{end}}

    {{if .Metrics.SalesTrend}}
    <div class="section-title">Daily Sales</div>
    <table class="data">
        <thead><tr><th>Date</th><th class="num">Sales</th><th class="num">Transactions</th><th class="num">Average</th></tr></thead>
        <tbody>
            {{range .Metrics.SalesTrend}}
            <tr><td>{{.Date}}</td><td class="num">{{money .Total}}</td><td class="num">{{.Count}}</td><td class="num">{{money .Average}}</td></tr>
            {{end}}
        </tbody>
    </table>
    {{end}}
</body>
</html>
`

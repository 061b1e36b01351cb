package marketing

import (
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LeadStats summarises the pipeline
type LeadStats struct {
	Total          int                `json:"total"`
	ByStatus       map[LeadStatus]int `json:"by_status"`
	ConversionRate decimal.Decimal    `json:"conversion_rate"`
	AverageScore   decimal.Decimal    `json:"average_score"`
	PipelineValue  decimal.Decimal    `json:"pipeline_value"`
}

// ComputeLeadStats derives lead statistics
func ComputeLeadStats(leads []Lead) LeadStats {
	s := LeadStats{Total: len(leads), ByStatus: map[LeadStatus]int{}}
	scoreSum := 0
	for i := range leads {
		l := &leads[i]
		s.ByStatus[l.Status]++
		scoreSum += l.Score
		if l.Status.IsOpen() {
			s.PipelineValue = s.PipelineValue.Add(l.EstimatedValue)
		}
	}
	s.ConversionRate = shared.PercentOf(s.ByStatus[LeadStatusConverted], max(s.Total, 1))
	if s.Total > 0 {
		s.AverageScore = shared.Round2(decimal.NewFromInt(int64(scoreSum)).Div(decimal.NewFromInt(int64(s.Total))))
	}
	return s
}

// CampaignStats summarises campaign performance
type CampaignStats struct {
	Total             int                    `json:"total"`
	ByStatus          map[CampaignStatus]int `json:"by_status"`
	TotalBudget       decimal.Decimal        `json:"total_budget"`
	TotalSpent        decimal.Decimal        `json:"total_spent"`
	BudgetUtilization decimal.Decimal        `json:"budget_utilization"`
	TotalRevenue      decimal.Decimal        `json:"total_revenue"`
	ClickThroughRate  decimal.Decimal        `json:"click_through_rate"`
	ROI               decimal.Decimal        `json:"roi"`
	TotalConversions  int                    `json:"total_conversions"`
}

// ComputeCampaignStats derives campaign statistics. CTR is clicks over
// opens; ROI is (revenue - spent) / spent.
func ComputeCampaignStats(campaigns []Campaign) CampaignStats {
	s := CampaignStats{Total: len(campaigns), ByStatus: map[CampaignStatus]int{}}
	opens, clicks := 0, 0
	for i := range campaigns {
		c := &campaigns[i]
		s.ByStatus[c.Status]++
		s.TotalBudget = s.TotalBudget.Add(c.Budget)
		s.TotalSpent = s.TotalSpent.Add(c.Spent)
		s.TotalRevenue = s.TotalRevenue.Add(c.Metrics.Revenue)
		s.TotalConversions += c.Metrics.Conversions
		opens += c.Metrics.Opens
		clicks += c.Metrics.Clicks
	}
	s.BudgetUtilization = shared.Percent(s.TotalSpent, s.TotalBudget)
	s.ClickThroughRate = shared.PercentOf(clicks, opens)
	s.ROI = shared.Percent(s.TotalRevenue.Sub(s.TotalSpent), s.TotalSpent)
	return s
}

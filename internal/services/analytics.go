package services

import (
	"sort"

	"github.com/civicrules/civicpulse/internal/config"
	"github.com/civicrules/civicpulse/internal/models"
	"gorm.io/gorm"
)

// AnalyticsService computes dashboard statistics from the current grievance
// snapshot. Every call is read-only and recomputes from the full dataset;
// at municipal volumes this is cheaper than keeping aggregates in sync.
// SLA targets are injected from config so they can be tested with arbitrary
// category sets.
type AnalyticsService struct {
	db  *gorm.DB
	sla *config.SLAConfig
}

func NewAnalyticsService(db *gorm.DB, sla *config.SLAConfig) *AnalyticsService {
	return &AnalyticsService{db: db, sla: sla}
}

type CategoryDistribution struct {
	Category   string  `json:"category"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ZoneDistribution struct {
	Zone  string `json:"zone"`
	Count int64  `json:"count"`
}

type SLAPerformance struct {
	Category              string  `json:"category"`
	SLATargetDays         int     `json:"sla_target_days"`
	TotalComplaints       int64   `json:"total_complaints"`
	ResolvedComplaints    int64   `json:"resolved_complaints"`
	WithinSLA             int64   `json:"within_sla"`
	BreachedSLA           int64   `json:"breached_sla"`
	ComplianceRate        float64 `json:"compliance_rate"`
	AverageResolutionDays float64 `json:"average_resolution_days"`
}

type RedZone struct {
	Location           string   `json:"location"`
	ComplaintCount     int64    `json:"complaint_count"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	MostCommonCategory string   `json:"most_common_category"`
	RiskLevel          string   `json:"risk_level"` // LOW, MEDIUM, HIGH
}

type DashboardStats struct {
	TotalComplaints       int64                  `json:"total_complaints"`
	ResolvedComplaints    int64                  `json:"resolved_complaints"`
	PendingComplaints     int64                  `json:"pending_complaints"`
	InProgressComplaints  int64                  `json:"in_progress_complaints"`
	ResolutionRate        float64                `json:"resolution_rate"`
	AverageResolutionTime float64                `json:"average_resolution_time"`
	CategoryDistribution  []CategoryDistribution `json:"category_distribution"`
	ZoneDistribution      []ZoneDistribution     `json:"zone_distribution"`
	SLAPerformance        []SLAPerformance       `json:"sla_performance"`
	RedZones              []RedZone              `json:"red_zones"`
}

// loadAll fetches the full grievance set ordered by id, so grouping and
// "first member" picks are deterministic regardless of store internals.
func (s *AnalyticsService) loadAll() ([]models.Grievance, error) {
	var grievances []models.Grievance
	err := s.db.Order("id").Find(&grievances).Error
	return grievances, err
}

// GetCategoryDistribution groups grievances by category with counts and
// percentage of total, sorted by count descending.
func (s *AnalyticsService) GetCategoryDistribution() ([]CategoryDistribution, error) {
	grievances, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	return categoryDistribution(grievances), nil
}

func categoryDistribution(grievances []models.Grievance) []CategoryDistribution {
	total := int64(len(grievances))

	counts := make(map[string]int64)
	for _, g := range grievances {
		counts[g.Category]++
	}

	result := make([]CategoryDistribution, 0, len(counts))
	for category, count := range counts {
		cd := CategoryDistribution{Category: category, Count: count}
		if total > 0 {
			cd.Percentage = float64(count) * 100 / float64(total)
		}
		result = append(result, cd)
	}

	// name ascending first, then stable by count, so equal counts order deterministically
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	sort.SliceStable(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	return result
}

// GetZoneDistribution groups grievances by location string with counts,
// sorted by count descending.
func (s *AnalyticsService) GetZoneDistribution() ([]ZoneDistribution, error) {
	grievances, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	return zoneDistribution(grievances), nil
}

func zoneDistribution(grievances []models.Grievance) []ZoneDistribution {
	counts := make(map[string]int64)
	for _, g := range grievances {
		counts[g.Location]++
	}

	result := make([]ZoneDistribution, 0, len(counts))
	for zone, count := range counts {
		result = append(result, ZoneDistribution{Zone: zone, Count: count})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Zone < result[j].Zone })
	sort.SliceStable(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	return result
}

// GetSLAPerformance computes per-category SLA compliance over resolved
// grievances, sorted by compliance rate descending. Elapsed time is whole
// days between creation and resolution, truncated; a grievance resolved in
// exactly the target number of days is within SLA.
func (s *AnalyticsService) GetSLAPerformance() ([]SLAPerformance, error) {
	grievances, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	return s.slaPerformance(grievances), nil
}

func (s *AnalyticsService) slaPerformance(grievances []models.Grievance) []SLAPerformance {
	groups := make(map[string][]models.Grievance)
	for _, g := range grievances {
		groups[g.Category] = append(groups[g.Category], g)
	}

	result := make([]SLAPerformance, 0, len(groups))
	for category, group := range groups {
		sla := SLAPerformance{
			Category:        category,
			SLATargetDays:   s.sla.TargetFor(category),
			TotalComplaints: int64(len(group)),
		}

		var resolvedCount, withinSLA, daysSum int64
		for _, g := range group {
			if g.Status != models.StatusResolved || g.ResolvedAt == nil {
				continue
			}
			resolvedCount++
			days := g.ResolutionDays()
			daysSum += int64(days)
			if days <= sla.SLATargetDays {
				withinSLA++
			}
		}

		sla.ResolvedComplaints = resolvedCount
		sla.WithinSLA = withinSLA
		sla.BreachedSLA = resolvedCount - withinSLA
		if resolvedCount > 0 {
			sla.ComplianceRate = float64(withinSLA) * 100 / float64(resolvedCount)
			sla.AverageResolutionDays = float64(daysSum) / float64(resolvedCount)
		}

		result = append(result, sla)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	sort.SliceStable(result, func(i, j int) bool { return result[i].ComplianceRate > result[j].ComplianceRate })
	return result
}

// GetRedZones identifies complaint-prone locations: 3+ complaints makes a
// candidate, 5+ is MEDIUM risk, 10+ is HIGH. Returns the top 10 by count.
// Coordinates come from the lowest-id grievance in the group that has them;
// most-common-category ties break to the lexicographically smaller name.
func (s *AnalyticsService) GetRedZones() ([]RedZone, error) {
	grievances, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	return redZones(grievances), nil
}

func redZones(grievances []models.Grievance) []RedZone {
	groups := make(map[string][]models.Grievance)
	for _, g := range grievances {
		groups[g.Location] = append(groups[g.Location], g)
	}

	result := make([]RedZone, 0)
	for location, group := range groups {
		count := int64(len(group))
		if count < 3 {
			continue
		}

		zone := RedZone{
			Location:       location,
			ComplaintCount: count,
		}

		for _, g := range group {
			if g.Latitude != nil {
				zone.Latitude = g.Latitude
				zone.Longitude = g.Longitude
				break
			}
		}

		zone.MostCommonCategory = mostCommonCategory(group)

		switch {
		case count >= 10:
			zone.RiskLevel = "HIGH"
		case count >= 5:
			zone.RiskLevel = "MEDIUM"
		default:
			zone.RiskLevel = "LOW"
		}

		result = append(result, zone)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Location < result[j].Location })
	sort.SliceStable(result, func(i, j int) bool { return result[i].ComplaintCount > result[j].ComplaintCount })

	if len(result) > 10 {
		result = result[:10]
	}
	return result
}

func mostCommonCategory(group []models.Grievance) string {
	counts := make(map[string]int64)
	for _, g := range group {
		counts[g.Category]++
	}

	var best string
	var bestCount int64
	for category, count := range counts {
		if count > bestCount || (count == bestCount && (best == "" || category < best)) {
			best = category
			bestCount = count
		}
	}
	return best
}

// GetDashboardStats assembles the complete dashboard: headline counts,
// resolution rate, average resolution time, and the four distributions.
// An empty store yields zeroed results.
func (s *AnalyticsService) GetDashboardStats() (*DashboardStats, error) {
	grievances, err := s.loadAll()
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalComplaints: int64(len(grievances)),
	}

	var resolvedDaysSum, resolvedWithTimestamp int64
	for _, g := range grievances {
		switch g.Status {
		case models.StatusResolved:
			stats.ResolvedComplaints++
			if g.ResolvedAt != nil {
				resolvedWithTimestamp++
				resolvedDaysSum += int64(g.ResolutionDays())
			}
		case models.StatusPending:
			stats.PendingComplaints++
		case models.StatusInProgress:
			stats.InProgressComplaints++
		}
	}

	if stats.TotalComplaints > 0 {
		stats.ResolutionRate = float64(stats.ResolvedComplaints) * 100 / float64(stats.TotalComplaints)
	}
	if resolvedWithTimestamp > 0 {
		stats.AverageResolutionTime = float64(resolvedDaysSum) / float64(resolvedWithTimestamp)
	}

	stats.CategoryDistribution = categoryDistribution(grievances)
	stats.ZoneDistribution = zoneDistribution(grievances)
	stats.SLAPerformance = s.slaPerformance(grievances)
	stats.RedZones = redZones(grievances)

	return stats, nil
}

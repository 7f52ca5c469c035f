package scorer

import (
	"sort"

	"github.com/leadscout/techscan/internal/enum"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/services/catalog"
)

// ScorerService ranks detected technologies by how much they say about the
// prospect's budget and how well they match the agency's specialization.
// Pure and safe for concurrent use.
type ScorerService struct {
	catalog     *catalog.Catalog
	multipliers map[enum.TechCategory]float64
}

// NewScorerService builds a scorer with the given per-category specialization
// multipliers. Categories absent from the map score at 1.0.
func NewScorerService(cat *catalog.Catalog, multipliers map[enum.TechCategory]float64) *ScorerService {
	if multipliers == nil {
		multipliers = map[enum.TechCategory]float64{}
	}
	return &ScorerService{
		catalog:     cat,
		multipliers: multipliers,
	}
}

// Score computes score = enterprise weight * specialization multiplier for
// every detected technology and returns them ranked. Ordering is total:
// score desc, then enterprise weight desc, then name asc, so equal inputs
// always rank identically. Rank is 1-based.
func (s *ScorerService) Score(detected []models.DetectedTechnology) []models.ScoredTechnology {
	scored := make([]models.ScoredTechnology, 0, len(detected))
	for _, tech := range detected {
		sig, ok := s.catalog.Get(tech.Name)
		if !ok {
			continue
		}
		multiplier := s.multiplierFor(sig.Category)
		scored = append(scored, models.ScoredTechnology{
			DetectedTechnology:   tech,
			EnterpriseWeight:     sig.EnterpriseWeight,
			SpecializationWeight: multiplier,
			Score:                sig.EnterpriseWeight * multiplier,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].EnterpriseWeight != scored[j].EnterpriseWeight {
			return scored[i].EnterpriseWeight > scored[j].EnterpriseWeight
		}
		return scored[i].Name < scored[j].Name
	})

	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}

func (s *ScorerService) multiplierFor(category enum.TechCategory) float64 {
	if m, ok := s.multipliers[category]; ok {
		return m
	}
	return 1.0
}

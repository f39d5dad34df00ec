// Package displaystats generates the decorative figures shown on the result
// panel. The numbers are random within a fixed range. They are not
// measured, verified or reported by any service, and nothing may treat
// them as telemetry.
package displaystats

import (
	"fmt"
	"math/rand/v2"
)

const (
	poolBase   = 114000
	poolSpread = 5000

	anonymityBase   = 99.85
	anonymitySpread = 0.14
)

// Stats are presentation-only values for one result panel.
type Stats struct {
	PoolUsers      int     `json:"pool_users"`
	AnonymityScore float64 `json:"anonymity_score"`
}

// PoolUsersText formats PoolUsers with thousands separators.
func (s Stats) PoolUsersText() string {
	n := s.PoolUsers
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", Stats{PoolUsers: n / 1000}.PoolUsersText(), n%1000)
}

// AnonymityText formats AnonymityScore as a percentage with two decimals.
func (s Stats) AnonymityText() string {
	return fmt.Sprintf("%.2f%%", s.AnonymityScore)
}

// Source supplies randomness.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// Generator produces Stats from a Source.
type Generator struct {
	src Source
}

// New returns a generator backed by the global math/rand source.
func New() *Generator {
	return &Generator{src: globalSource{}}
}

// NewWithSource returns a generator backed by src.
func NewWithSource(src Source) *Generator {
	return &Generator{src: src}
}

// Generate returns a fresh set of figures.
func (g *Generator) Generate() Stats {
	return Stats{
		PoolUsers:      poolBase + g.src.IntN(poolSpread),
		AnonymityScore: anonymityBase + g.src.Float64()*anonymitySpread,
	}
}

type globalSource struct{}

func (globalSource) IntN(n int) int   { return rand.IntN(n) }  //nolint:gosec // G404: decorative values
func (globalSource) Float64() float64 { return rand.Float64() } //nolint:gosec // G404: decorative values

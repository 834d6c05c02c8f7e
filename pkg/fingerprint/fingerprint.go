// Package fingerprint holds the fixed pools of desktop user agent
// strings and screen resolutions used to diversify request fingerprints,
// plus weighted random selection over them.
package fingerprint

import (
	_ "embed"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Most common desktop user agents with their observed usage share,
// one "<agent>\t<weight>" row per line.
// Source: https://www.useragents.me/#most-common-desktop-useragents-json-csv
//
//go:embed user_agents.tsv
var userAgentsTSV string

// Resolution is a desktop screen resolution in pixels.
type Resolution struct {
	Width  int
	Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// IsZero reports whether the resolution is unset.
func (r Resolution) IsZero() bool {
	return r.Width == 0 && r.Height == 0
}

// Resolutions is the fixed pool of most common desktop screen resolutions.
var Resolutions = []Resolution{
	{1920, 1080},
	{1366, 768},
	{1536, 864},
	{1440, 900},
	{1600, 900},
}

// RandomResolution picks a resolution from the fixed pool, uniformly.
func RandomResolution() Resolution {
	return Resolutions[rand.Intn(len(Resolutions))]
}

// UserAgentPool is a weighted pool of user agent strings.
type UserAgentPool struct {
	agents  []string
	weights []float64
	total   float64
}

// ParseUserAgentPool parses "<agent>\t<weight>" rows into a pool.
func ParseUserAgentPool(tsv string) (*UserAgentPool, error) {
	pool := &UserAgentPool{}
	for i, line := range strings.Split(tsv, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("user agent pool: line %d: expected 2 tab-separated fields, got %d", i+1, len(fields))
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("user agent pool: line %d: invalid weight %q: %w", i+1, fields[1], err)
		}
		if weight <= 0 {
			return nil, fmt.Errorf("user agent pool: line %d: weight must be positive", i+1)
		}
		pool.agents = append(pool.agents, fields[0])
		pool.weights = append(pool.weights, weight)
		pool.total += weight
	}
	if len(pool.agents) == 0 {
		return nil, fmt.Errorf("user agent pool: no entries")
	}
	return pool, nil
}

// Len returns the number of agents in the pool.
func (p *UserAgentPool) Len() int { return len(p.agents) }

// Agents returns a copy of the pool's user agent strings.
func (p *UserAgentPool) Agents() []string {
	out := make([]string, len(p.agents))
	copy(out, p.agents)
	return out
}

// Random draws a user agent from the pool, weighted by usage share.
func (p *UserAgentPool) Random() string {
	target := rand.Float64() * p.total
	for i, w := range p.weights {
		target -= w
		if target < 0 {
			return p.agents[i]
		}
	}
	return p.agents[len(p.agents)-1]
}

var defaultPool = mustParsePool(userAgentsTSV)

func mustParsePool(tsv string) *UserAgentPool {
	pool, err := ParseUserAgentPool(tsv)
	if err != nil {
		panic(err)
	}
	return pool
}

// DefaultUserAgents returns the embedded pool of most common desktop
// user agents.
func DefaultUserAgents() *UserAgentPool { return defaultPool }

// RandomUserAgent draws a user agent from the embedded pool.
func RandomUserAgent() string { return defaultPool.Random() }

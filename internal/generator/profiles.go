// Package generator produces the synthetic agent and client profile
// records a demo run starts from, either from built-in pools or from
// a seed workbook.
package generator

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"call-insights-go/internal/types"
)

var firstNames = []string{
	"Megan", "Lisa", "Omar", "Priya", "Daniel", "Sofia", "Ethan", "Nora",
	"Carlos", "Aisha", "Victor", "Hannah", "Leo", "Maya", "Samuel", "Ruth",
}

var lastNames = []string{
	"Cole", "Ray", "Haddad", "Patel", "Kim", "Alvarez", "Brooks", "Okafor",
	"Silva", "Novak", "Meyer", "Ishikawa", "Dunn", "Rossi", "Kaur", "Weiss",
}

type Generator struct {
	rnd *rand.Rand
}

// New returns a generator. The same seed yields the same profiles,
// which keeps demo runs reproducible.
func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// NewID returns a 32-character identifier suitable for any entity key.
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func (g *Generator) Agents(n int) []types.Agent {
	agents := make([]types.Agent, 0, n)
	for i := 0; i < n; i++ {
		agents = append(agents, types.Agent{
			AgentID:   NewID(),
			FirstName: firstNames[g.rnd.Intn(len(firstNames))],
			LastName:  lastNames[g.rnd.Intn(len(lastNames))],
		})
	}
	return agents
}

func (g *Generator) Clients(n int) []types.Client {
	clients := make([]types.Client, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[g.rnd.Intn(len(firstNames))]
		last := lastNames[g.rnd.Intn(len(lastNames))]
		clients = append(clients, types.Client{
			ClientID:    NewID(),
			FirstName:   first,
			LastName:    last,
			PhoneNumber: fmt.Sprintf("555-%04d", g.rnd.Intn(10000)),
			Email:       fmt.Sprintf("%s.%s@example.com", strings.ToLower(first), strings.ToLower(last)),
		})
	}
	return clients
}

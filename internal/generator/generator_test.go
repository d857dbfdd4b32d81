package generator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNewIDShape(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 32)
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, NewID())
}

func TestAgentsAndClientsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)

	agentsA := a.Agents(5)
	agentsB := b.Agents(5)
	require.Len(t, agentsA, 5)
	for i := range agentsA {
		assert.Equal(t, agentsA[i].FirstName, agentsB[i].FirstName)
		assert.Equal(t, agentsA[i].LastName, agentsB[i].LastName)
		assert.NotEmpty(t, agentsA[i].AgentID)
	}

	clients := a.Clients(3)
	require.Len(t, clients, 3)
	for _, c := range clients {
		assert.NotEmpty(t, c.ClientID)
		assert.Contains(t, c.Email, "@example.com")
		assert.Regexp(t, `^555-\d{4}$`, c.PhoneNumber)
	}
}

func TestLoadSeedWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.xlsx")

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Agents")
	f.SetSheetRow("Agents", "A1", &[]string{"agent_id", "first_name", "last_name"})
	f.SetSheetRow("Agents", "A2", &[]string{"a1", "Megan", "Cole"})
	f.SetSheetRow("Agents", "A3", &[]string{"", "Omar", "Haddad"})

	f.NewSheet("Clients")
	f.SetSheetRow("Clients", "A1", &[]string{"client_id", "first_name", "last_name", "phone_number", "email"})
	f.SetSheetRow("Clients", "A2", &[]string{"c1", "Lisa", "Ray", "555-0100", "lisa@example.com"})
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	agents, clients, err := LoadSeedWorkbook(path)
	require.NoError(t, err)

	require.Len(t, agents, 2)
	assert.Equal(t, "a1", agents[0].AgentID)
	assert.Equal(t, "Megan", agents[0].FirstName)
	// Missing id gets generated.
	assert.Len(t, agents[1].AgentID, 32)

	require.Len(t, clients, 1)
	assert.Equal(t, "c1", clients[0].ClientID)
	assert.Equal(t, "lisa@example.com", clients[0].Email)
}

func TestLoadSeedWorkbookMissingSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, _, err := LoadSeedWorkbook(path)
	require.Error(t, err)
}

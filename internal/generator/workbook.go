package generator

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"call-insights-go/internal/types"
)

// LoadSeedWorkbook reads agent and client profiles from an xlsx seed
// file. Sheet and column names are matched by heuristics so exported
// spreadsheets with slightly different headers still load.
func LoadSeedWorkbook(path string) ([]types.Agent, []types.Client, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	agentSheet, clientSheet := "", ""
	for _, name := range f.GetSheetList() {
		l := strings.ToLower(name)
		switch {
		case strings.Contains(l, "agent"):
			agentSheet = name
		case strings.Contains(l, "client") || strings.Contains(l, "customer"):
			clientSheet = name
		}
	}
	if agentSheet == "" || clientSheet == "" {
		return nil, nil, fmt.Errorf("workbook needs an agents sheet and a clients sheet, got %v", f.GetSheetList())
	}

	agents, err := loadAgents(f, agentSheet)
	if err != nil {
		return nil, nil, err
	}
	clients, err := loadClients(f, clientSheet)
	if err != nil {
		return nil, nil, err
	}
	return agents, clients, nil
}

func loadAgents(f *excelize.File, sheet string) ([]types.Agent, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("sheet %s has no data rows", sheet)
	}
	idIdx, firstIdx, lastIdx := -1, -1, -1
	for i, h := range rows[0] {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "id"):
			if idIdx == -1 {
				idIdx = i
			}
		case strings.Contains(l, "first"):
			firstIdx = i
		case strings.Contains(l, "last"):
			lastIdx = i
		}
	}
	var out []types.Agent
	for _, r := range rows[1:] {
		a := types.Agent{
			AgentID:   cell(r, idIdx),
			FirstName: cell(r, firstIdx),
			LastName:  cell(r, lastIdx),
		}
		if a.AgentID == "" {
			a.AgentID = NewID()
		}
		if a.FirstName == "" && a.LastName == "" {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func loadClients(f *excelize.File, sheet string) ([]types.Client, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("sheet %s has no data rows", sheet)
	}
	idIdx, firstIdx, lastIdx, phoneIdx, emailIdx := -1, -1, -1, -1, -1
	for i, h := range rows[0] {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "phone"):
			phoneIdx = i
		case strings.Contains(l, "mail"):
			emailIdx = i
		case strings.Contains(l, "id"):
			if idIdx == -1 {
				idIdx = i
			}
		case strings.Contains(l, "first"):
			firstIdx = i
		case strings.Contains(l, "last"):
			lastIdx = i
		}
	}
	var out []types.Client
	for _, r := range rows[1:] {
		c := types.Client{
			ClientID:    cell(r, idIdx),
			FirstName:   cell(r, firstIdx),
			LastName:    cell(r, lastIdx),
			PhoneNumber: cell(r, phoneIdx),
			Email:       cell(r, emailIdx),
		}
		if c.ClientID == "" {
			c.ClientID = NewID()
		}
		if c.FirstName == "" && c.LastName == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

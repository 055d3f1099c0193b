package dto

import "github.com/questforge/treasury/internal/core/domain"

// DriftEntryResponse compares one currency's cached and durable balance.
type DriftEntryResponse struct {
	CurrencyID string  `json:"currencyId"`
	Cached     float64 `json:"cached"`
	Durable    float64 `json:"durable"`
	Drifted    bool    `json:"drifted"`
}

// DriftReportResponse is the full per-account consistency report.
type DriftReportResponse struct {
	UUID    string               `json:"uuid"`
	Entries []DriftEntryResponse `json:"entries"`
	Drifted bool                 `json:"drifted"`
}

// ToDriftReportResponse converts drift entries to the report DTO.
func ToDriftReportResponse(id string, entries []domain.DriftEntry) DriftReportResponse {
	report := DriftReportResponse{UUID: id, Entries: make([]DriftEntryResponse, len(entries))}
	for i, e := range entries {
		report.Entries[i] = DriftEntryResponse{
			CurrencyID: e.CurrencyID,
			Cached:     e.Cached,
			Durable:    e.Durable,
			Drifted:    e.Drifted,
		}
		if e.Drifted {
			report.Drifted = true
		}
	}
	return report
}

package http

import "net/http"

type statsView struct {
	TotalProposals   uint64 `json:"totalProposals"`
	ActiveProposals  uint64 `json:"activeProposals"`
	TotalMembers     uint64 `json:"totalMembers"`
	AvgParticipation uint64 `json:"avgParticipation"`
}

func (ser server) getStats(w http.ResponseWriter, r *http.Request) {
	stats := ser.app.Stats()
	ser.writeJSON(w, http.StatusOK, statsView{
		TotalProposals:   stats.TotalProposals,
		ActiveProposals:  stats.ActiveProposals,
		TotalMembers:     stats.TotalMembers,
		AvgParticipation: stats.AvgParticipation,
	})
}

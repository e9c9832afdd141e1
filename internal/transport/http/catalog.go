package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/veloway/freightline/internal/app"
)

// CandidateLister is the read-only planning view exposed to dashboards.
type CandidateLister interface {
	Candidates(ctx context.Context, destinationCity string) ([]app.CandidateChain, error)
}

type CatalogHandler struct {
	catalog CandidateLister
}

func NewCatalogHandler(catalog CandidateLister) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	destination := r.URL.Query().Get("destination")
	if destination == "" {
		writeError(w, http.StatusBadRequest, codeDestinationRequired, "destination query parameter required")
		return
	}

	chains, err := h.catalog.Candidates(r.Context(), destination)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]candidateChainResponse, 0, len(chains))
	for _, chain := range chains {
		c := candidateChainResponse{
			HubID:   chain.Hub.ID,
			HubCity: chain.Hub.City,
		}
		for _, res := range chain.Rail {
			c.Rail = append(c.Rail, resourceResponseFrom(res))
		}
		for _, res := range chain.Road {
			c.Road = append(c.Road, resourceResponseFrom(res))
		}
		resp = append(resp, c)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type candidateChainResponse struct {
	HubID   string             `json:"hub_id"`
	HubCity string             `json:"hub_city"`
	Rail    []resourceResponse `json:"rail,omitempty"`
	Road    []resourceResponse `json:"road"`
}

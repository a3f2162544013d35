package handler

import (
	"net/http"

	"trailmeet/internal/app/eventtype"
	"trailmeet/internal/pkg/resp"
)

type keywordEntry struct {
	Keyword    string               `json:"keyword"`
	Descriptor eventtype.Descriptor `json:"descriptor"`
}

// HandleListEventTypes returns the keyword dictionary with each keyword's descriptor.
func HandleListEventTypes(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keywords := eventtype.Keywords()
		entries := make([]keywordEntry, 0, len(keywords))
		for _, k := range keywords {
			d, _ := eventtype.Lookup(k)
			entries = append(entries, keywordEntry{Keyword: k, Descriptor: d})
		}

		resp.RespondSuccess(w, r, map[string]any{
			"keywords": entries,
			"default":  eventtype.Default(""),
		})
	}
}

// HandleResolveEventType resolves ?q= to a descriptor. Any input resolves.
func HandleResolveEventType(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		resp.RespondSuccess(w, r, map[string]any{
			"event_type": q,
			"descriptor": deps.Resolver.Resolve(q),
		})
	}
}

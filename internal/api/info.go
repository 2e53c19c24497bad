package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	version    string
	dataDir    string
	plannerURL string
	journalOK  bool
}

func NewInfoHandler(version, dataDir, plannerURL string, journalOK bool) *InfoHandler {
	return &InfoHandler{version: version, dataDir: dataDir, plannerURL: plannerURL, journalOK: journalOK}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	DataDir  string   `json:"data_dir" doc:"Data directory path"`
	Planner  string   `json:"planner" doc:"Planning service base URL"`
	Journal  bool     `json:"journal" doc:"Whether the edit journal is recording"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	features := []string{"tours", "requests", "reorder", "warehouses", "files", "search", "geojson"}
	if h.journalOK {
		features = append(features, "journal")
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:     "plat-tours",
		Version:  h.version,
		DataDir:  h.dataDir,
		Planner:  h.plannerURL,
		Journal:  h.journalOK,
		Features: features,
	}}, nil
}

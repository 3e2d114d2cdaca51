package catalog

import (
	"encoding/json"
	"sort"

	"github.com/maisonlux/ateliergo/internal/models"
)

// ResolveService normalizes a raw catalog record into its canonical
// shape. The workflow linkage has gone through several generations, so
// resolution follows a fixed precedence:
//
//  1. first entry of the Workflows list, sorted by order
//  2. first element of a legacy array-typed workflow_id
//  3. a legacy scalar workflow_id string
//  4. none
//
// The result is deterministic and stable across repeated calls.
func ResolveService(svc models.CatalogService) models.ResolvedService {
	resolved := models.ResolvedService{
		ID:          svc.ID,
		Name:        svc.Name,
		Category:    svc.Category,
		Price:       svc.Price,
		Description: svc.Description,
		Image:       svc.Image,
	}

	if len(svc.Workflows) > 0 {
		refs := make([]models.WorkflowRef, len(svc.Workflows))
		copy(refs, svc.Workflows)
		sort.SliceStable(refs, func(a, b int) bool { return refs[a].Order < refs[b].Order })
		resolved.Workflows = refs
		resolved.WorkflowID = refs[0].ID
		return resolved
	}

	resolved.WorkflowID = legacyWorkflowID(svc.LegacyWorkflowID)
	return resolved
}

// legacyWorkflowID decodes the historical workflow_id column, which holds
// either a JSON array of ids or a bare string depending on the row's age.
func legacyWorkflowID(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		if len(ids) > 0 {
			return ids[0]
		}
		return ""
	}

	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}

	return ""
}

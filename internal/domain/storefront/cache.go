package storefront

import "github.com/google/uuid"

// MappingCache is the in-memory lookup bundle built once per chunk. It never
// outlives a chunk: mappings written while processing a chunk become visible
// to the next chunk through a rebuild, which also bounds memory.
type MappingCache struct {
	// Templates maps template id to its mapping
	Templates map[uuid.UUID]*TemplateMapping
	// Categories maps category id to remote category id
	Categories map[uuid.UUID]int64
	// Attributes maps attribute id to remote attribute id
	Attributes map[uuid.UUID]int64
	// Terms maps attribute value id to remote term id
	Terms map[uuid.UUID]int64
	// Unmapped holds the in-scope template ids that have no mapping yet
	Unmapped map[uuid.UUID]struct{}
}

// NewMappingCache creates an empty cache bundle.
func NewMappingCache() *MappingCache {
	return &MappingCache{
		Templates:  make(map[uuid.UUID]*TemplateMapping),
		Categories: make(map[uuid.UUID]int64),
		Attributes: make(map[uuid.UUID]int64),
		Terms:      make(map[uuid.UUID]int64),
		Unmapped:   make(map[uuid.UUID]struct{}),
	}
}

// Template returns the cached mapping for a template, nil when unmapped.
func (c *MappingCache) Template(templateID uuid.UUID) *TemplateMapping {
	return c.Templates[templateID]
}

// PutTemplate records a freshly written template mapping so later items in
// the same chunk see it without a rebuild.
func (c *MappingCache) PutTemplate(mapping *TemplateMapping) {
	c.Templates[mapping.TemplateID] = mapping
	delete(c.Unmapped, mapping.TemplateID)
}

// DropTemplate forgets a template mapping, used when a stale mapping is
// discarded after a remote not-found.
func (c *MappingCache) DropTemplate(templateID uuid.UUID) {
	delete(c.Templates, templateID)
	c.Unmapped[templateID] = struct{}{}
}

// HasUnmapped returns true when at least one in-scope template is unmapped,
// which is the only case the remote SKU index is worth building for.
func (c *MappingCache) HasUnmapped() bool {
	return len(c.Unmapped) > 0
}

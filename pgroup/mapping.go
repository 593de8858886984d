package pgroup

// Mapping is the many-to-many relation between protein groups and proteins. Groups and
// proteins keep the order in which they were first added.
type Mapping struct {
	groups        []string
	proteins      []string
	groupProteins map[string][]string
	proteinGroups map[string][]string
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{
		groupProteins: make(map[string][]string),
		proteinGroups: make(map[string][]string),
	}
}

// Add appends proteins to group. A protein already in the group is ignored.
func (m *Mapping) Add(group string, proteins ...string) {
	if _, ok := m.groupProteins[group]; !ok {
		m.groups = append(m.groups, group)
		m.groupProteins[group] = nil
	}
	for _, p := range proteins {
		if contains(m.groupProteins[group], p) {
			continue
		}
		m.groupProteins[group] = append(m.groupProteins[group], p)
		if _, seen := m.proteinGroups[p]; !seen {
			m.proteins = append(m.proteins, p)
		}
		m.proteinGroups[p] = append(m.proteinGroups[p], group)
	}
}

// Groups returns the group identifiers.
func (m *Mapping) Groups() []string { return m.groups }

// Proteins returns every protein once.
func (m *Mapping) Proteins() []string { return m.proteins }

// ProteinsOf returns the ordered members of group.
func (m *Mapping) ProteinsOf(group string) []string { return m.groupProteins[group] }

// GroupsOf returns the groups protein belongs to.
func (m *Mapping) GroupsOf(protein string) []string { return m.proteinGroups[protein] }

// Memberships is the number of groups protein belongs to.
func (m *Mapping) Memberships(protein string) int { return len(m.proteinGroups[protein]) }

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

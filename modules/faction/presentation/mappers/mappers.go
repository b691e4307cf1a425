package mappers

import (
	"sort"
	"time"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/faction"
	"github.com/musterhq/muster/modules/faction/domain/aggregates/member"
	"github.com/musterhq/muster/modules/faction/presentation/viewmodels"
)

func FactionToViewModel(f faction.Faction) *viewmodels.Faction {
	vm := &viewmodels.Faction{
		ID:             f.ID().String(),
		OrganizationID: f.OrganizationID().String(),
		Name:           f.Name(),
		Slug:           f.Slug(),
		Abbreviation:   f.Abbreviation(),
		Description:    f.Description(),
		Active:         f.Active(),
		CreatedAt:      f.CreatedAt().Format(time.RFC3339),
		UpdatedAt:      f.UpdatedAt().Format(time.RFC3339),
	}
	if f.ParentID() != nil {
		vm.ParentID = f.ParentID().String()
	}
	return vm
}

func MemberToViewModel(m member.Membership) *viewmodels.Member {
	vm := &viewmodels.Member{
		ID:          m.ID().String(),
		Kind:        string(m.Kind()),
		PersonID:    m.PersonID().String(),
		Username:    m.Person().Username,
		Email:       m.Person().Email,
		DisplayName: m.Person().DisplayName,
		IsAdmin:     m.IsAdmin(),
		CreatedAt:   m.CreatedAt().Format(time.RFC3339),
	}
	if m.FactionID() != nil {
		vm.FactionID = m.FactionID().String()
	}
	return vm
}

// FactionsToTree nests a flat faction list by parent pointer. Roots and
// children come out sorted by name so renders are stable.
func FactionsToTree(factions []faction.Faction) []*viewmodels.TreeNode {
	nodes := make(map[string]*viewmodels.TreeNode, len(factions))
	for _, f := range factions {
		nodes[f.ID().String()] = &viewmodels.TreeNode{
			ID:       f.ID().String(),
			Name:     f.Name(),
			Slug:     f.Slug(),
			Children: []*viewmodels.TreeNode{},
		}
	}

	roots := []*viewmodels.TreeNode{}
	for _, f := range factions {
		node := nodes[f.ID().String()]
		if f.ParentID() == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[f.ParentID().String()]
		if !ok {
			// orphaned by a filtered-out parent; surface at the top
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	var sortNodes func(ns []*viewmodels.TreeNode)
	sortNodes = func(ns []*viewmodels.TreeNode) {
		sort.Slice(ns, func(i, j int) bool { return ns[i].Name < ns[j].Name })
		for _, n := range ns {
			sortNodes(n.Children)
		}
	}
	sortNodes(roots)
	return roots
}

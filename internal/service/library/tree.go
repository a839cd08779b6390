package library

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"medialib/internal/domain/models"
)

// BuildTree flattens the folder table into ordered tree rows.
//
// Traversal is pre-order depth-first from root (folders without a parent are
// depth 0). A folder's children are visited only if its id is in expanded, so
// rows under a collapsed folder are absent from the output. Siblings keep the
// order of items, which is the store's last sort.
//
// Children are indexed once per call; the index is never reused across calls
// because folders change between renders. Nodes on a parent cycle cannot be
// reached from root, so the walk terminates on malformed data too.
func BuildTree(items []models.FolderItem, expanded map[string]struct{}) []models.TreeRow {
	children := indexChildren(items)

	rows := make([]models.TreeRow, 0, len(items))
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		for _, i := range children[parent] {
			item := items[i]
			id := item.Folder.ID
			_, isExpanded := expanded[id]

			rows = append(rows, models.TreeRow{
				Item:        item,
				Depth:       depth,
				HasChildren: len(children[id]) > 0,
				IsExpanded:  isExpanded,
			})

			if isExpanded {
				walk(id, depth+1)
			}
		}
	}
	walk("", 0)

	return rows
}

// indexChildren maps parent id ("" for root) to child positions in items order
func indexChildren(items []models.FolderItem) map[string][]int {
	children := make(map[string][]int, len(items))
	for i, item := range items {
		if item.Folder.ID == "" {
			continue
		}
		parent := item.Folder.ParentRef()
		children[parent] = append(children[parent], i)
	}
	return children
}

// Breadcrumbs walks parent references from folderID up to root and returns
// the trail root-first. The walk stops at the first parent that is not in the
// table. Sentinel ids and "" yield an empty trail.
func Breadcrumbs(byID map[string]models.FolderItem, folderID string) []models.FolderItem {
	var trail []models.FolderItem
	seen := make(map[string]struct{})

	for id := folderID; id != "" && !models.IsSentinelID(id); {
		if _, loop := seen[id]; loop {
			break
		}
		seen[id] = struct{}{}

		item, ok := byID[id]
		if !ok {
			break
		}
		trail = append(trail, item)
		id = item.Folder.ParentRef()
	}

	slices.Reverse(trail)
	return trail
}

// Descendants returns the ids of every folder reachable from folderID by
// following child edges, excluding folderID itself.
func Descendants(items []models.FolderItem, folderID string) []string {
	children := indexChildren(items)

	var ids []string
	seen := map[string]struct{}{folderID: {}}
	queue := []string{folderID}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, i := range children[parent] {
			id := items[i].Folder.ID
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
			queue = append(queue, id)
		}
	}
	return ids
}

// MoveTargets returns the valid destinations for moving folderID: every
// folder except folderID and its descendants. This is the only cycle guard;
// MoveFolder trusts its caller.
func MoveTargets(items []models.FolderItem, folderID string) []models.FolderItem {
	invalid := map[string]struct{}{folderID: {}}
	for _, id := range Descendants(items, folderID) {
		invalid[id] = struct{}{}
	}

	targets := make([]models.FolderItem, 0, len(items))
	for _, item := range items {
		if _, skip := invalid[item.Folder.ID]; !skip {
			targets = append(targets, item)
		}
	}
	return targets
}

// ChildFolders returns the direct children of parentID in items order.
// The root sentinel (or "") selects root-level folders; see-all selects every folder.
func ChildFolders(items []models.FolderItem, parentID string) []models.FolderItem {
	if parentID == models.SeeAllFolderID {
		return slices.Clone(items)
	}
	if parentID == models.RootFolderID {
		parentID = ""
	}

	var result []models.FolderItem
	for _, item := range items {
		if item.Folder.ParentRef() == parentID {
			result = append(result, item)
		}
	}
	return result
}

const selectIndent = "\u00a0\u00a0"

// SelectOptions flattens the tree into picker options. Siblings are sorted
// case-insensitively by name; labels are indented by two non-breaking spaces
// per level, with root-level folders at level one.
func SelectOptions(items []models.FolderItem) []models.SelectOption {
	fold := cases.Fold()
	children := indexChildren(items)

	var options []models.SelectOption
	var build func(parent string, depth int)
	build = func(parent string, depth int) {
		positions := slices.Clone(children[parent])
		slices.SortStableFunc(positions, func(a, b int) int {
			return strings.Compare(
				fold.String(items[a].Folder.Name),
				fold.String(items[b].Folder.Name),
			)
		})

		for _, i := range positions {
			folder := items[i].Folder
			options = append(options, models.SelectOption{
				Label: strings.Repeat(selectIndent, depth) + folder.Name,
				Value: folder.ID,
			})
			build(folder.ID, depth+1)
		}
	}
	build("", 1)

	return options
}

// SelectOption maps one folder id to a picker option
func SelectOption(byID map[string]models.FolderItem, folderID string) *models.SelectOption {
	item, ok := byID[folderID]
	if !ok {
		return nil
	}
	return &models.SelectOption{Label: item.Folder.Name, Value: item.Folder.ID}
}

func itemsByID(items []models.FolderItem) map[string]models.FolderItem {
	byID := make(map[string]models.FolderItem, len(items))
	for _, item := range items {
		byID[item.Folder.ID] = item
	}
	return byID
}

// Tree derives the tree rows from the current table and expanded set
func (s *FolderStore) Tree() []models.TreeRow {
	items, expanded := s.snapshot()
	return BuildTree(items, expanded)
}

// Breadcrumbs returns the trail for folderID
func (s *FolderStore) Breadcrumbs(folderID string) []models.FolderItem {
	return Breadcrumbs(itemsByID(s.Items()), folderID)
}

// CurrentBreadcrumbs returns the trail for the current folder
func (s *FolderStore) CurrentBreadcrumbs() []models.FolderItem {
	items, _ := s.snapshot()
	return Breadcrumbs(itemsByID(items), s.CurrentFolderID())
}

// MoveTargets returns the valid move destinations for folderID
func (s *FolderStore) MoveTargets(folderID string) []models.FolderItem {
	return MoveTargets(s.Items(), folderID)
}

// ChildFolders returns the children of the current folder
func (s *FolderStore) ChildFolders() []models.FolderItem {
	return ChildFolders(s.Items(), s.CurrentFolderID())
}

// SelectOptions returns the indented picker options
func (s *FolderStore) SelectOptions() []models.SelectOption {
	return SelectOptions(s.Items())
}

// SelectOption returns the picker option for folderID, or nil
func (s *FolderStore) SelectOption(folderID string) *models.SelectOption {
	return SelectOption(itemsByID(s.Items()), folderID)
}

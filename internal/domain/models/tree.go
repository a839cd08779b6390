package models

// TreeRow is one rendered row of the folder tree view.
type TreeRow struct {
	Item        FolderItem `json:"item"`
	Depth       int        `json:"depth"`
	HasChildren bool       `json:"has_children"`
	IsExpanded  bool       `json:"is_expanded"`
}

// SelectOption is a flat, indented option for folder pickers.
type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FolderState is a point-in-time copy of the folder store.
type FolderState struct {
	Items           []FolderItem `json:"items"`
	ExpandedIDs     []string     `json:"expanded_ids"`
	CurrentFolderID string       `json:"current_folder_id"`
	Creating        bool         `json:"creating"`
	CreatingError   *ErrorInfo   `json:"creating_error,omitempty"`
	Fetching        bool         `json:"fetching"`
	FetchCount      int          `json:"fetch_count"` // -1 = never fetched
	FetchingError   *ErrorInfo   `json:"fetching_error,omitempty"`
}

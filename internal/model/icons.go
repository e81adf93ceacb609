package model

// Centralized icons for the tree view.
// Single-width characters only so column alignment holds in every terminal.
const (
	IconExpanded  = "▾"
	IconFolded    = "▸"
	IconLeaf      = "•"
	IconCollapsed = "↩" // back-reference to an earlier occurrence
	IconMatch     = "◆" // search hit
	IconMissing   = "✗" // ill-formed store path
)

package parser

// IssueRow is a flat catalogue row as stored in the issues table (or
// joined through project_issues).
type IssueRow struct {
	Issue       string  `json:"issue"`
	Parent      *string `json:"parent"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Notes       string  `json:"notes"`
	Examples    string  `json:"examples"`
}

// IssueTreeNode is one node of the reconstructed issue forest handed to
// clients.
type IssueTreeNode struct {
	IssueRow
	Children []*IssueTreeNode `json:"children"`
}

// BuildIssueForest reconstructs the issue forest from flat rows. Roots
// (parent == nil) and children keep their input order. Rows whose parent
// is not present in the input are skipped: the catalogue invariants should
// make that impossible, but display must not break on partial data.
func BuildIssueForest(rows []IssueRow) []*IssueTreeNode {
	nodes := make(map[string]*IssueTreeNode, len(rows))
	for _, row := range rows {
		nodes[row.Issue] = &IssueTreeNode{IssueRow: row, Children: []*IssueTreeNode{}}
	}

	var roots []*IssueTreeNode
	for _, row := range rows {
		node := nodes[row.Issue]
		if row.Parent == nil {
			roots = append(roots, node)
			continue
		}

		parent, ok := nodes[*row.Parent]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots
}

package graph

// CommonName is the local name of a category's shared-code node.
const CommonName = "common"

// ID identifies an operator by its owning category and its name within that
// category. Every operator except a category's common node is addressed
// globally by its local name alone; the common node is addressed as
// "<category>.common".
type ID struct {
	Category string
	Local    string
}

// NormalizeID builds the ID for a name as it appears under category in the
// configuration artifact or in a repository path.
func NormalizeID(category, name string) ID {
	return ID{Category: category, Local: name}
}

// CommonID returns the ID of category's common node.
func CommonID(category string) ID {
	return ID{Category: category, Local: CommonName}
}

// IsCommon reports whether id is a category common node.
func (id ID) IsCommon() bool {
	return id.Local == CommonName
}

// String returns the graph-wide name of the operator.
func (id ID) String() string {
	if id.IsCommon() {
		return id.Category + "." + CommonName
	}
	return id.Local
}

// DependencyName returns the graph-wide name a dependency written as dep
// inside a record of category refers to. A bare "common" refers to the
// record's own category common node; anything else is already global.
func DependencyName(category, dep string) string {
	if dep == CommonName {
		return CommonID(category).String()
	}
	return dep
}

// Names converts ids to their graph-wide names, preserving order.
func Names(ids []ID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	return names
}

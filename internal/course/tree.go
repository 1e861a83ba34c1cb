package course

// NodeKind classifies a node of the hierarchical course representation.
type NodeKind string

const (
	KindCourse NodeKind = "course"
	KindBlock  NodeKind = "block"
	KindUnit   NodeKind = "unit"
)

// Node is one element of a hierarchical course document. Blocks group
// units for authoring purposes only; they carry no progress semantics.
type Node struct {
	ID       string   `json:"id"`
	Title    string   `json:"title,omitempty"`
	Kind     NodeKind `json:"kind,omitempty"`
	Version  string   `json:"version,omitempty"`
	Children []Node   `json:"children,omitempty"`

	// Unit fields, only meaningful when Kind is KindUnit.
	Order         *int                `json:"order,omitempty"`
	Prerequisites []string            `json:"prerequisites,omitempty"`
	Objectives    []Objective         `json:"objectives,omitempty"`
	Completion    *CompletionCriteria `json:"completionCriteria,omitempty"`
	MoveOn        MoveOn              `json:"moveOn,omitempty"`
	MasteryScore  *float64            `json:"masteryScore,omitempty"`
}

// isUnit reports whether n is a unit. A node without a kind and without
// children is treated as a unit.
func (n Node) isUnit() bool {
	if n.Kind == KindUnit {
		return true
	}
	return n.Kind == "" && len(n.Children) == 0
}

// Flatten converts a hierarchical course into the flat shape the engine
// consumes. Units are collected depth-first; a unit without an explicit
// order receives its visit position.
func Flatten(root Node) Course {
	c := Course{
		ID:      root.ID,
		Title:   root.Title,
		Version: root.Version,
	}
	visit := 0
	var walk func(n Node)
	walk = func(n Node) {
		if n.isUnit() {
			order := visit
			if n.Order != nil {
				order = *n.Order
			}
			c.Units = append(c.Units, Unit{
				ID:            n.ID,
				Title:         n.Title,
				Order:         order,
				Prerequisites: n.Prerequisites,
				Objectives:    n.Objectives,
				Completion:    n.Completion,
				MoveOn:        n.MoveOn,
				MasteryScore:  n.MasteryScore,
			})
			visit++
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, child := range root.Children {
		walk(child)
	}
	return c
}

// ToTree converts a flat course into a single-level tree whose children are
// the units in course order.
func ToTree(c Course) Node {
	root := Node{
		ID:      c.ID,
		Title:   c.Title,
		Kind:    KindCourse,
		Version: c.Version,
	}
	for _, u := range BuildIndex(c).Units() {
		order := u.Order
		root.Children = append(root.Children, Node{
			ID:            u.ID,
			Title:         u.Title,
			Kind:          KindUnit,
			Order:         &order,
			Prerequisites: u.Prerequisites,
			Objectives:    u.Objectives,
			Completion:    u.Completion,
			MoveOn:        u.MoveOn,
			MasteryScore:  u.MasteryScore,
		})
	}
	return root
}

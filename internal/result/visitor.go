package result

// Visitor receives the nodes of a result tree in depth-first order.
// Implementations must not modify the tree.
type Visitor interface {
	VisitSuite(r *BenchmarkResult)
	VisitClass(c *ClassResult)
	VisitMethod(m *MethodResult)
	VisitSingle(s *SingleResult)
}

// BaseVisitor implements Visitor with no-ops. Embed it to handle only some
// levels.
type BaseVisitor struct{}

func (BaseVisitor) VisitSuite(*BenchmarkResult) {}
func (BaseVisitor) VisitClass(*ClassResult)     {}
func (BaseVisitor) VisitMethod(*MethodResult)   {}
func (BaseVisitor) VisitSingle(*SingleResult)   {}

// Walk visits root and all of its descendants, parents before children.
func Walk(root *BenchmarkResult, v Visitor) {
	if root == nil {
		return
	}
	v.VisitSuite(root)
	for _, c := range root.children {
		v.VisitClass(c)
		for _, m := range c.children {
			v.VisitMethod(m)
			for _, s := range m.children {
				v.VisitSingle(s)
			}
		}
	}
}

package canopy

import (
	"slices"
	"sort"
)

// Rule is a selector with its ordered declarations. Order is the insertion
// sequence number used to break specificity ties.
type Rule struct {
	Selector     *Selector
	Declarations []Declaration
	Specificity  Specificity
	Order        int
}

// StyleStore holds the style rules, the per-entity selector inputs
// (element, id, classes, pseudo-classes) and one Property table per style
// property. Setters only mark entities dirty; Resolve recomputes them.
type StyleStore struct {
	tree  *Tree
	rules []*Rule
	order int

	elements Storage[string]
	ids      Storage[string]
	classes  Storage[[]string]
	pseudo   Storage[PseudoClass]

	dirty    Storage[struct{}]
	allDirty bool

	tables   [propCount]propTable
	onLayout func(Entity)
	warn     func(format string, args ...any)

	Display         *Property[Display]
	Visibility      *Property[Visibility]
	Opacity         *Property[float64]
	BackgroundColor *Property[Color]
	BorderColor     *Property[Color]
	BorderWidth     *Property[Units]
	BorderRadius    *Property[Units]
	Color           *Property[Color]
	FontSize        *Property[float64]
	LayoutType      *Property[LayoutType]
	PositionType    *Property[PositionType]
	Left            *Property[Units]
	Right           *Property[Units]
	Top             *Property[Units]
	Bottom          *Property[Units]
	Width           *Property[Units]
	Height          *Property[Units]
	MinWidth        *Property[Units]
	MaxWidth        *Property[Units]
	MinHeight       *Property[Units]
	MaxHeight       *Property[Units]
	ChildLeft       *Property[Units]
	ChildRight      *Property[Units]
	ChildTop        *Property[Units]
	ChildBottom     *Property[Units]
	RowBetween      *Property[Units]
	ColBetween      *Property[Units]
	MainAlignment   *Property[Alignment]
	CrossAlignment  *Property[Alignment]
	GridRows        *Property[[]Units]
	GridCols        *Property[[]Units]
	RowIndex        *Property[int]
	ColIndex        *Property[int]
	RowSpan         *Property[int]
	ColSpan         *Property[int]
	Transition      *Property[[]Transition]
	ZIndex          *Property[int]
}

// NewStyleStore creates an empty store over tree.
func NewStyleStore(tree *Tree) *StyleStore {
	s := &StyleStore{tree: tree}
	zero := Pixels(0)
	s.Display = newProperty(s, PropDisplay, DisplayFlex, nil)
	s.Visibility = newProperty(s, PropVisibility, Visible, nil)
	s.Opacity = newProperty(s, PropOpacity, 1, LerpFloat)
	s.BackgroundColor = newProperty(s, PropBackgroundColor, ColorTransparent, LerpColor)
	s.BorderColor = newProperty(s, PropBorderColor, ColorTransparent, LerpColor)
	s.BorderWidth = newProperty(s, PropBorderWidth, zero, LerpUnits)
	s.BorderRadius = newProperty(s, PropBorderRadius, zero, LerpUnits)
	s.Color = newProperty(s, PropColor, ColorBlack, LerpColor)
	s.FontSize = newProperty(s, PropFontSize, 16, LerpFloat)
	s.LayoutType = newProperty(s, PropLayoutType, LayoutColumn, nil)
	s.PositionType = newProperty(s, PropPositionType, ParentDirected, nil)
	s.Left = newProperty(s, PropLeft, Auto, LerpUnits)
	s.Right = newProperty(s, PropRight, Auto, LerpUnits)
	s.Top = newProperty(s, PropTop, Auto, LerpUnits)
	s.Bottom = newProperty(s, PropBottom, Auto, LerpUnits)
	s.Width = newProperty(s, PropWidth, Stretch(1), LerpUnits)
	s.Height = newProperty(s, PropHeight, Stretch(1), LerpUnits)
	s.MinWidth = newProperty(s, PropMinWidth, Auto, LerpUnits)
	s.MaxWidth = newProperty(s, PropMaxWidth, Auto, LerpUnits)
	s.MinHeight = newProperty(s, PropMinHeight, Auto, LerpUnits)
	s.MaxHeight = newProperty(s, PropMaxHeight, Auto, LerpUnits)
	s.ChildLeft = newProperty(s, PropChildLeft, zero, LerpUnits)
	s.ChildRight = newProperty(s, PropChildRight, zero, LerpUnits)
	s.ChildTop = newProperty(s, PropChildTop, zero, LerpUnits)
	s.ChildBottom = newProperty(s, PropChildBottom, zero, LerpUnits)
	s.RowBetween = newProperty(s, PropRowBetween, zero, LerpUnits)
	s.ColBetween = newProperty(s, PropColBetween, zero, LerpUnits)
	s.MainAlignment = newProperty(s, PropMainAlignment, AlignStart, nil)
	s.CrossAlignment = newProperty(s, PropCrossAlignment, AlignStart, nil)
	s.GridRows = newSliceProperty[Units](s, PropGridRows)
	s.GridCols = newSliceProperty[Units](s, PropGridCols)
	s.RowIndex = newProperty(s, PropRowIndex, 0, nil)
	s.ColIndex = newProperty(s, PropColIndex, 0, nil)
	s.RowSpan = newProperty(s, PropRowSpan, 1, nil)
	s.ColSpan = newProperty(s, PropColSpan, 1, nil)
	s.Transition = newSliceProperty[Transition](s, PropTransition)
	s.ZIndex = newProperty(s, PropZIndex, 0, nil)

	for _, id := range []PropertyID{
		PropDisplay, PropLayoutType, PropPositionType,
		PropLeft, PropRight, PropTop, PropBottom,
		PropWidth, PropHeight, PropMinWidth, PropMaxWidth, PropMinHeight, PropMaxHeight,
		PropChildLeft, PropChildRight, PropChildTop, PropChildBottom,
		PropRowBetween, PropColBetween, PropMainAlignment, PropCrossAlignment,
		PropGridRows, PropGridCols, PropRowIndex, PropColIndex, PropRowSpan, PropColSpan,
	} {
		s.tables[id].markLayout()
	}
	return s
}

// Rules returns the rules in cascade order.
func (s *StyleStore) Rules() []*Rule { return s.rules }

// AddRule parses selector and appends a rule with the given declarations.
// Every entity is re-resolved on the next cycle.
func (s *StyleStore) AddRule(selector string, decls ...Declaration) error {
	sel, err := ParseSelector(selector)
	if err != nil {
		return err
	}
	s.addRules([]*Rule{{Selector: sel, Declarations: decls}})
	return nil
}

func (s *StyleStore) addRules(rules []*Rule) {
	for _, r := range rules {
		r.Specificity = r.Selector.Specificity()
		r.Order = s.order
		s.order++
		s.rules = append(s.rules, r)
	}
	sort.SliceStable(s.rules, func(i, j int) bool {
		a, b := s.rules[i], s.rules[j]
		if a.Specificity != b.Specificity {
			return a.Specificity.Less(b.Specificity)
		}
		return a.Order < b.Order
	})
	s.allDirty = true
}

// ClearRules removes every rule.
func (s *StyleStore) ClearRules() {
	s.rules = nil
	s.allDirty = true
}

// MarkDirty queues e for re-resolution.
func (s *StyleStore) MarkDirty(e Entity) {
	if s.tree.Contains(e) {
		s.dirty.Insert(e, struct{}{})
	}
}

func (s *StyleStore) markBranchDirty(e Entity) {
	for n := range s.tree.Branch(e) {
		s.dirty.Insert(n, struct{}{})
	}
}

// IsDirty reports whether e waits for re-resolution.
func (s *StyleStore) IsDirty(e Entity) bool {
	return s.allDirty && s.tree.Contains(e) || s.dirty.Contains(e)
}

// SetElement sets the element name matched by type selectors.
func (s *StyleStore) SetElement(e Entity, name string) {
	if !s.tree.Contains(e) {
		return
	}
	s.elements.Insert(e, name)
	s.markBranchDirty(e)
}

// Element returns the element name of e.
func (s *StyleStore) Element(e Entity) string {
	v, _ := s.elements.Get(e)
	return v
}

// SetID sets the id matched by #id selectors.
func (s *StyleStore) SetID(e Entity, id string) {
	if !s.tree.Contains(e) {
		return
	}
	s.ids.Insert(e, id)
	s.markBranchDirty(e)
}

// ID returns the id of e.
func (s *StyleStore) ID(e Entity) string {
	v, _ := s.ids.Get(e)
	return v
}

// FindByID returns the first entity in document order with the given id.
func (s *StyleStore) FindByID(id string) (Entity, bool) {
	for e := range s.tree.Down(Root) {
		if v, ok := s.ids.Get(e); ok && v == id {
			return e, true
		}
	}
	return Null, false
}

// AddClass adds a class to e.
func (s *StyleStore) AddClass(e Entity, class string) {
	if !s.tree.Contains(e) || s.HasClass(e, class) {
		return
	}
	cur, _ := s.classes.Get(e)
	s.classes.Insert(e, append(slices.Clip(cur), class))
	s.markBranchDirty(e)
}

// RemoveClass removes a class from e.
func (s *StyleStore) RemoveClass(e Entity, class string) {
	cur, _ := s.classes.Get(e)
	i := slices.Index(cur, class)
	if i < 0 {
		return
	}
	s.classes.Insert(e, slices.Delete(slices.Clone(cur), i, i+1))
	s.markBranchDirty(e)
}

// ToggleClass adds or removes class depending on on.
func (s *StyleStore) ToggleClass(e Entity, class string, on bool) {
	if on {
		s.AddClass(e, class)
	} else {
		s.RemoveClass(e, class)
	}
}

// HasClass reports whether e carries class.
func (s *StyleStore) HasClass(e Entity, class string) bool {
	cur, _ := s.classes.Get(e)
	return slices.Contains(cur, class)
}

// Classes returns the classes of e. The slice must not be modified.
func (s *StyleStore) Classes(e Entity) []string {
	cur, _ := s.classes.Get(e)
	return cur
}

// SetPseudo sets or clears pseudo-class flags on e. The entity and its
// subtree are re-resolved when the flags change.
func (s *StyleStore) SetPseudo(e Entity, flags PseudoClass, on bool) {
	if !s.tree.Contains(e) {
		return
	}
	cur, _ := s.pseudo.Get(e)
	next := cur &^ flags
	if on {
		next = cur | flags
	}
	if next == cur {
		return
	}
	s.pseudo.Insert(e, next)
	s.markBranchDirty(e)
}

// Pseudo returns the pseudo-class flags of e.
func (s *StyleStore) Pseudo(e Entity) PseudoClass {
	v, _ := s.pseudo.Get(e)
	return v
}

// Set writes an inline declaration. It reports false when the value type
// does not match the property.
func (s *StyleStore) Set(e Entity, d Declaration) bool {
	if d.Property >= propCount {
		return false
	}
	return s.tables[d.Property].setInline(e, d.Value)
}

// SetInlineStyle parses "name: value; ..." and applies every declaration
// inline. Nothing is applied when the text is malformed.
func (s *StyleStore) SetInlineStyle(e Entity, text string) error {
	decls, err := ParseInlineStyle(text)
	if err != nil {
		return &StyleSheetError{Selector: "inline", Err: err}
	}
	for _, d := range decls {
		s.Set(e, d)
	}
	return nil
}

// Resolve recomputes every dirty entity in document order and returns how
// many were resolved.
func (s *StyleStore) Resolve() int {
	if !s.allDirty && s.dirty.Len() == 0 {
		return 0
	}
	n := 0
	for e := range s.tree.Down(Root) {
		if s.allDirty || s.dirty.Contains(e) {
			s.resolveEntity(e)
			n++
		}
	}
	s.dirty.Clear()
	s.allDirty = false
	return n
}

func (s *StyleStore) resolveEntity(e Entity) {
	var declared [propCount]any
	for _, r := range s.rules {
		if !s.Matches(r.Selector, e) {
			continue
		}
		for _, d := range r.Declarations {
			declared[d.Property] = d.Value
		}
	}
	s.Transition.resolve(e, declared[PropTransition], nil)
	transitions, _ := s.Transition.Resolved(e)
	for _, t := range s.tables {
		if t.ID() == PropTransition {
			continue
		}
		if t.resolve(e, declared[t.ID()], transitions) && t.affectsLayout() && s.onLayout != nil {
			s.onLayout(e)
		}
	}
}

// Matches reports whether sel matches e.
func (s *StyleStore) Matches(sel *Selector, e Entity) bool {
	if !s.matchCompound(sel, e) {
		return false
	}
	if sel.Parent == nil {
		return true
	}
	if sel.Combinator == CombinatorChild {
		p, ok := s.tree.Parent(e)
		return ok && s.Matches(sel.Parent, p)
	}
	for a := range s.tree.Ancestors(e) {
		if s.Matches(sel.Parent, a) {
			return true
		}
	}
	return false
}

func (s *StyleStore) matchCompound(sel *Selector, e Entity) bool {
	if sel.Element != "" && sel.Element != "*" && sel.Element != s.Element(e) {
		return false
	}
	if sel.ID != "" && sel.ID != s.ID(e) {
		return false
	}
	if sel.Pseudo != 0 && s.Pseudo(e)&sel.Pseudo != sel.Pseudo {
		return false
	}
	for _, c := range sel.Classes {
		if !s.HasClass(e, c) {
			return false
		}
	}
	return true
}

// Remove drops every style entry of e.
func (s *StyleStore) Remove(e Entity) {
	s.elements.Remove(e)
	s.ids.Remove(e)
	s.classes.Remove(e)
	s.pseudo.Remove(e)
	s.dirty.Remove(e)
	for _, t := range s.tables {
		t.drop(e)
	}
}

// table returns the erased property table for id.
func (s *StyleStore) table(id PropertyID) propTable {
	if id >= propCount {
		return nil
	}
	return s.tables[id]
}

// Copyright (C) 2026 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package binaryxml

// Element describes an element of a document as it is visited.
type Element struct {
	// Path is the slash separated names of the element and its ancestors,
	// for example "manifest/application/activity".
	Path string
	// Namespace is the element's namespace URI, or empty.
	Namespace string
	Name      string
	Line      uint32
}

// Attribute is an attribute of an element as it is visited. The namespace,
// tag and name address the attribute; Value is its current value.
type Attribute struct {
	// Tag is the name of the element holding the attribute.
	Tag string
	// Path is the Element.Path of the element holding the attribute.
	Path string
	// Namespace is the attribute's namespace URI, or empty.
	Namespace string
	Name      string
	// ResourceID is the framework resource id the name is mapped to, or 0.
	ResourceID uint32
	Value      Value
}

// Action is the outcome of visiting an attribute.
type Action int

const (
	// ActionKeep leaves the attribute as it is.
	ActionKeep Action = iota
	// ActionReplace replaces the attribute's value.
	ActionReplace
	// ActionRemove drops the attribute from its element.
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionKeep:
		return "Keep"
	case ActionReplace:
		return "Replace"
	case ActionRemove:
		return "Remove"
	default:
		return "Action<?>"
	}
}

// Edit is returned for each visited attribute.
type Edit struct {
	Action Action
	// Value is the replacement value for ActionReplace.
	Value Value
}

// Keep returns the Edit that leaves an attribute untouched.
func Keep() Edit { return Edit{Action: ActionKeep} }

// Replace returns the Edit that replaces an attribute's value with v.
func Replace(v Value) Edit { return Edit{Action: ActionReplace, Value: v} }

// Remove returns the Edit that drops an attribute.
func Remove() Edit { return Edit{Action: ActionRemove} }

// Visitor is handed every element of a document, in document order.
type Visitor interface {
	// Element is called as each element starts. The returned AttributeVisitor,
	// if not nil, is handed each of the element's attributes in order.
	Element(e Element) AttributeVisitor
}

// AttributeVisitor is handed the attributes of a single element.
type AttributeVisitor interface {
	Attribute(a Attribute) Edit
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(e Element) AttributeVisitor

// Element calls f(e).
func (f VisitorFunc) Element(e Element) AttributeVisitor { return f(e) }

// AttributeVisitorFunc adapts a function to the AttributeVisitor interface.
type AttributeVisitorFunc func(a Attribute) Edit

// Attribute calls f(a).
func (f AttributeVisitorFunc) Attribute(a Attribute) Edit { return f(a) }

// accept drives v over every start element of the tree, applying the edits
// it returns. Namespaces, end elements and CDATA are not visited.
func (x *xmlTree) accept(v Visitor) {
	x.visit(func(ctx *xmlContext, c chunk, when int) {
		se, ok := c.(*xmlStartElement)
		if !ok || when != afterContextChange {
			return
		}
		e := Element{
			Path: ctx.path(),
			Name: se.name.get(),
			Line: se.lineNumber,
		}
		if se.namespace.isValid() {
			e.Namespace = se.namespace.get()
		}
		if av := v.Element(e); av != nil {
			x.applyEdits(e, se, av)
		}
	})
}

func (x *xmlTree) applyEdits(e Element, se *xmlStartElement, av AttributeVisitor) {
	for i := 0; i < len(se.attributes); {
		at := &se.attributes[i]
		a := Attribute{
			Tag:        e.Name,
			Path:       e.Path,
			Name:       at.name.get(),
			ResourceID: x.resourceMap.idOf(at.name),
			Value:      at.value(),
		}
		if at.namespace.isValid() {
			a.Namespace = at.namespace.get()
		}
		switch edit := av.Attribute(a); edit.Action {
		case ActionRemove:
			se.removeAttribute(i)
			continue
		case ActionReplace:
			at.setValue(x, edit.Value)
		}
		i++
	}
}

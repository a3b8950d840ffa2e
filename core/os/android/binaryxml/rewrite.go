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

import "strings"

// AndroidNamespace is the namespace URI of the framework attributes.
const AndroidNamespace = "http://schemas.android.com/apk/res/android"

// Rule decides the fate of a single attribute. It is called once for every
// attribute of every element of the document.
type Rule func(a Attribute) Edit

// Rewrite returns a Visitor that passes every attribute through rule before
// handing it, with any replaced value, to the attribute visitor inner returns
// for the element. inner may be nil.
func Rewrite(inner Visitor, rule Rule) Visitor {
	return rewriter{inner, rule}
}

type rewriter struct {
	inner Visitor
	rule  Rule
}

func (r rewriter) Element(e Element) AttributeVisitor {
	var inner AttributeVisitor
	if r.inner != nil {
		inner = r.inner.Element(e)
	}
	return attributeRewriter{inner, r.rule}
}

type attributeRewriter struct {
	inner AttributeVisitor
	rule  Rule
}

func (r attributeRewriter) Attribute(a Attribute) Edit {
	edit := Keep()
	if r.rule != nil {
		edit = r.rule(a)
	}
	switch edit.Action {
	case ActionRemove:
		return edit
	case ActionReplace:
		a.Value = edit.Value
	}
	if r.inner == nil {
		return edit
	}
	if next := r.inner.Attribute(a); next.Action != ActionKeep {
		return next
	}
	return edit
}

// Chain returns a Rule applying each of rules in turn. Each rule sees the
// value left by the ones before it; the first removal wins.
func Chain(rules ...Rule) Rule {
	return func(a Attribute) Edit {
		out := Keep()
		for _, rule := range rules {
			switch edit := rule(a); edit.Action {
			case ActionRemove:
				return edit
			case ActionReplace:
				a.Value = edit.Value
				out = edit
			}
		}
		return out
	}
}

// ReplaceString returns a Rule replacing the string value old of the
// attribute namespace:name with new, on any element.
func ReplaceString(namespace, name, old, new string) Rule {
	return func(a Attribute) Edit {
		if a.Namespace == namespace && a.Name == name &&
			a.Value.Type == TypeString && a.Value.Text == old {
			return Replace(StringValue(new))
		}
		return Keep()
	}
}

// SetString returns a Rule setting the attribute namespace:name of every
// element named tag to the string value.
func SetString(tag, namespace, name, value string) Rule {
	return func(a Attribute) Edit {
		if a.Tag == tag && a.Namespace == namespace && a.Name == name {
			return Replace(StringValue(value))
		}
		return Keep()
	}
}

// RemoveAttribute returns a Rule dropping the attribute namespace:name from
// every element named tag.
func RemoveAttribute(tag, namespace, name string) Rule {
	return func(a Attribute) Edit {
		if a.Tag == tag && a.Namespace == namespace && a.Name == name {
			return Remove()
		}
		return Keep()
	}
}

// RenamePackage returns a Rule moving a manifest from package old to new.
// It rewrites the manifest's package attribute, content provider authorities
// and permissions declared under the old package name.
func RenamePackage(old, new string) Rule {
	rename := func(s string) (string, bool) {
		if s == old {
			return new, true
		}
		if strings.HasPrefix(s, old+".") {
			return new + strings.TrimPrefix(s, old), true
		}
		return s, false
	}
	return func(a Attribute) Edit {
		if a.Value.Type != TypeString {
			return Keep()
		}
		switch {
		case a.Path == "manifest" && a.Namespace == "" && a.Name == "package":
			if s, ok := rename(a.Value.Text); ok {
				return Replace(StringValue(s))
			}
		case a.Namespace == AndroidNamespace && a.Name == "authorities":
			parts := strings.Split(a.Value.Text, ";")
			changed := false
			for i, p := range parts {
				if s, ok := rename(p); ok {
					parts[i], changed = s, true
				}
			}
			if changed {
				return Replace(StringValue(strings.Join(parts, ";")))
			}
		case a.Namespace == AndroidNamespace && a.Name == "name" &&
			(a.Tag == "permission" || a.Tag == "uses-permission"):
			if s, ok := rename(a.Value.Text); ok {
				return Replace(StringValue(s))
			}
		}
		return Keep()
	}
}

// Copyright (C) 2017 Google Inc.
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

// Package manifest provides a typed view of a decoded AndroidManifest.xml.
package manifest

import (
	"context"
	"encoding/xml"

	"github.com/google/apkpatch/core/fault"
	"github.com/google/apkpatch/core/log"
)

const (
	// ActionMain is the action treated as the main entry point, which does not
	// expect to receive data.
	ActionMain = "android.intent.action.MAIN"

	// CategoryInfo provides information about the package it is in; typically
	// used if a package does not contain a CATEGORY_LAUNCHER to provide a
	// front-door to the user without having to be shown in the all apps list.
	CategoryInfo = "android.intent.category.INFO"

	// CategoryLauncher means the action should be displayed in the top-level
	// launcher.
	CategoryLauncher = "android.intent.category.LAUNCHER"

	ErrNoActivityFound = fault.Const("No suitable activity found")
)

// Manifest represents an AndroidManifest.xml file.
type Manifest struct {
	Package     string       `xml:"package,attr"`
	VersionCode int64        `xml:"versionCode,attr"`
	VersionName string       `xml:"versionName,attr"`
	SDK         UsesSDK      `xml:"uses-sdk"`
	Application Application  `xml:"application"`
	Features    []Feature    `xml:"uses-feature"`
	Permissions []Permission `xml:"uses-permission"`
	Declared    []Permission `xml:"permission"`
}

// Parse parses the manifest from the given XML string.
func Parse(ctx context.Context, s string) (Manifest, error) {
	m := Manifest{}
	if err := xml.Unmarshal([]byte(s), &m); err != nil {
		return Manifest{}, log.Err(ctx, err, "Parsing manifest")
	}
	return m, nil
}

// UsesSDK is the <uses-sdk> element of the manifest.
type UsesSDK struct {
	MinSDKVersion    int `xml:"minSdkVersion,attr"`
	TargetSDKVersion int `xml:"targetSdkVersion,attr"`
}

// Application is the <application> element of the manifest.
type Application struct {
	Label      string     `xml:"label,attr"`
	Debuggable bool       `xml:"debuggable,attr"`
	Activities []Activity `xml:"activity"`
	Providers  []Provider `xml:"provider"`
	MetaData   []MetaData `xml:"meta-data"`
}

// Meta returns the value of the named <meta-data> element.
func (a Application) Meta(name string) (string, bool) {
	for _, m := range a.MetaData {
		if m.Name == name {
			return m.Value, true
		}
	}
	return "", false
}

type Activity struct {
	Name          string         `xml:"name,attr"`
	IntentFilters []IntentFilter `xml:"intent-filter"`
}

type IntentFilter struct {
	Action     Action     `xml:"action"`
	Categories []Category `xml:"category"`
}

type Action struct {
	Name string `xml:"name,attr"`
}

type Category struct {
	Name string `xml:"name,attr"`
}

// Provider is a <provider> element. Authorities is the raw, semicolon
// separated list.
type Provider struct {
	Name        string `xml:"name,attr"`
	Authorities string `xml:"authorities,attr"`
	Exported    bool   `xml:"exported,attr"`
}

type MetaData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type Feature struct {
	Name        string `xml:"name,attr"`
	Required    bool   `xml:"required,attr"`
	GlEsVersion string `xml:"glEsVersion,attr"`
}

type Permission struct {
	Name string `xml:"name,attr"`
}

// MainActivity returns the name of the main activity and its launch action.
func (m Manifest) MainActivity(ctx context.Context) (activity, action string, err error) {
	search := func(category string) (activity, action string, ok bool) {
		for _, a := range m.Application.Activities {
			for _, i := range a.IntentFilters {
				if i.Action.Name == ActionMain {
					for _, c := range i.Categories {
						if c.Name == category {
							return a.Name, i.Action.Name, true
						}
					}
				}
			}
		}
		return "", "", false
	}

	var ok bool
	if activity, action, ok = search(CategoryInfo); ok {
		return
	}
	if activity, action, ok = search(CategoryLauncher); ok {
		return
	}
	return "", "", log.Err(ctx, ErrNoActivityFound, "")
}

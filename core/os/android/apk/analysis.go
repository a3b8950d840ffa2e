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

package apk

import (
	"context"
	"path"

	"github.com/klauspost/compress/zip"

	"github.com/google/apkpatch/core/log"
)

var engineSignatures = map[string]string{
	"libunity.so":         "unity",
	"libUnrealEngine3.so": "unreal3",
	"libUE4.so":           "unreal4",
	"libmonodroid.so":     "xamarin",
	"libgodot_android.so": "godot",
}

// Information is the summary of an APK returned by Analyze.
type Information struct {
	Label       string
	VersionCode int64
	VersionName string
	Package     string
	Activity    string
	Action      string
	Engine      string
	ABI         []string
	Debuggable  bool
}

// Analyze returns the information about the APK in apkData.
func Analyze(ctx context.Context, apkData []byte) (*Information, error) {
	files, err := Read(ctx, apkData)
	if err != nil {
		return nil, err
	}
	m, err := GetManifest(ctx, files)
	if err != nil {
		return nil, err
	}

	activity, action, err := m.MainActivity(ctx)
	if err != nil {
		log.W(ctx, "No launch activity for %s: %v", m.Package, err)
	}
	return &Information{
		Label:       m.Application.Label,
		VersionCode: m.VersionCode,
		VersionName: m.VersionName,
		Package:     m.Package,
		Activity:    activity,
		Action:      action,
		Engine:      engine(files),
		ABI:         GatherABIs(files),
		Debuggable:  m.Application.Debuggable,
	}, nil
}

func engine(files []*zip.File) string {
	for _, file := range files {
		_, name := path.Split(file.Name)
		if engine, ok := engineSignatures[name]; ok {
			return engine
		}
	}
	return "<unknown>"
}

// URI returns the activity launch URI of the APK.
func (i *Information) URI() string {
	var uri string
	if i.Action != "" {
		uri = i.Action + ":"
	}
	uri += i.Package
	if i.Activity != "" {
		uri += "/" + i.Activity
	}
	return uri
}

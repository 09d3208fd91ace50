// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package auth

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"regexp"
	"strings"

	"gopkg.in/src-d/go-errors.v1"
)

var (
	regNative = regexp.MustCompile(`^\*[0-9A-F]{40}$`)

	// ErrParseUserFile is given when a user file is malformed.
	ErrParseUserFile = errors.NewKind("error parsing caller file")
	// ErrUnknownPermission happens when a caller permission is not defined.
	ErrUnknownPermission = errors.NewKind("unknown permission, %s")
	// ErrDuplicateCaller happens when a caller appears more than once.
	ErrDuplicateCaller = errors.NewKind("duplicate caller, %s")
)

// nativeCaller holds credentials and permissions for one caller.
type nativeCaller struct {
	Name            string
	Token           string
	JSONPermissions []string `json:"Permissions"`
	Permissions     Permission
}

// Allowed checks if the caller has the given permission.
func (c nativeCaller) Allowed(p Permission) error {
	if c.Permissions&p == p {
		return nil
	}

	missing := (^c.Permissions) & p
	return ErrNotAuthorized.Wrap(ErrNoPermission.New(missing))
}

// NativeToken hashes a plaintext secret the same way a native password
// file would, so tokens at rest never hold the plaintext.
func NativeToken(secret string) string {
	if len(secret) == 0 {
		return ""
	}

	hash := sha1.New()
	hash.Write([]byte(secret))
	s1 := hash.Sum(nil)

	hash.Reset()
	hash.Write(s1)
	s2 := hash.Sum(nil)

	return fmt.Sprintf("*%s", strings.ToUpper(hex.EncodeToString(s2)))
}

// Native holds token-authenticated callers and their granted permissions.
type Native struct {
	callers map[string]nativeCaller
}

// NewNativeSingle creates a Native with one caller holding perm.
func NewNativeSingle(name, secret string, perm Permission) *Native {
	callers := map[string]nativeCaller{
		name: {Name: name, Token: NativeToken(secret), Permissions: perm},
	}
	return &Native{callers}
}

// NewNativeFile loads callers and permissions from a JSON file, the way a
// deployment would provision access without recompiling.
func NewNativeFile(file string) (*Native, error) {
	var data []nativeCaller

	raw, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, ErrParseUserFile.New(err)
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, ErrParseUserFile.New(err)
	}

	callers := make(map[string]nativeCaller)
	for _, c := range data {
		if _, ok := callers[c.Name]; ok {
			return nil, ErrParseUserFile.Wrap(ErrDuplicateCaller.New(c.Name))
		}

		if !regNative.MatchString(c.Token) {
			c.Token = NativeToken(c.Token)
		}

		if len(c.JSONPermissions) == 0 {
			c.Permissions = DefaultPermissions
		}

		for _, p := range c.JSONPermissions {
			perm, ok := PermissionNames[strings.ToLower(p)]
			if !ok {
				return nil, ErrParseUserFile.Wrap(ErrUnknownPermission.New(p))
			}
			c.Permissions |= perm
		}

		callers[c.Name] = c
	}

	return &Native{callers}, nil
}

// Allowed implements Auth.
func (n *Native) Allowed(caller string, permission Permission) error {
	c, ok := n.callers[caller]
	if !ok {
		return ErrNotAuthorized.Wrap(ErrNoPermission.New(permission))
	}
	return c.Allowed(permission)
}
